package asset

import "fmt"

// StructHandler is the stock Handler: assets whose payload is a free
// form field map, framed by this package's codec. Gems with richer
// schemas implement Handler themselves.
type StructHandler struct {
	typ     string
	display string
	exts    []string
}

func NewStructHandler(typ, display string, exts ...string) *StructHandler {
	return &StructHandler{typ: typ, display: display, exts: exts}
}

func (h *StructHandler) Type() string { return h.typ }

func (h *StructHandler) DisplayName() string { return h.display }

func (h *StructHandler) Extensions() []string { return h.exts }

func (h *StructHandler) New(id uint64) *Asset {
	return &Asset{ID: id, Type: h.typ, Data: make(map[string]any)}
}

func (h *StructHandler) Load(a *Asset, frame []byte) error {
	decoded, err := Decode(frame)
	if err != nil {
		return err
	}
	if decoded.Type != h.typ {
		return fmt.Errorf("asset: handler for %q fed a %q frame", h.typ, decoded.Type)
	}
	a.ID = decoded.ID
	a.Type = decoded.Type
	a.Data = decoded.Data
	return nil
}

func (h *StructHandler) Save(a *Asset) ([]byte, error) {
	if a.Type != h.typ {
		return nil, fmt.Errorf("asset: handler for %q asked to save a %q asset", h.typ, a.Type)
	}
	return Encode(a)
}
