package service

import "encoding/json"

// Event wire versions. Bump when the JSON shape changes.
const eventVersion = 1

// Event is the outbox payload shipped to Kafka for every mutation.
type Event struct {
	V       int    `json:"v"`
	Type    string `json:"type"`
	Plugin  string `json:"plugin,omitempty"`
	Key     string `json:"key,omitempty"`
	AssetID uint64 `json:"assetId,omitempty"`
	Seq     uint64 `json:"seq"`
}

const (
	EventOptionChanged = "option.changed"
	EventAssetPut      = "asset.put"
	EventAssetDeleted  = "asset.deleted"
)

func (e Event) encode() []byte {
	out, err := json.Marshal(e)
	if err != nil {
		panic(err) // plain struct, marshal cannot fail
	}
	return out
}
