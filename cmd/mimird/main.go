package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"mimir/bus"
	"mimir/domain/asset"
	"mimir/domain/options"
	"mimir/infra/kafka"
	"mimir/infra/kv"
	"mimir/infra/sequence"
	"mimir/jobs/broadcaster"
	"mimir/service"
)

func main() {
	// ---------------- Store ----------------

	store, err := kv.Open("./data")
	if err != nil {
		log.Fatalf("kv store init failed: %v", err)
	}
	defer store.Close()

	// ---------------- Bus ----------------

	b := bus.New()
	b.Subscribe(options.TopicChanged, func(e any) {
		c := e.(options.Changed)
		log.Printf("[options] %s/%s -> %v", c.Plugin, c.Key, c.Value)
	})
	b.Subscribe(asset.TopicRegistered, func(e any) {
		r := e.(asset.Registered)
		log.Printf("[asset] registered type=%s exts=%v", r.Type, r.Extensions)
	})

	// ---------------- Handlers ----------------

	handlers := asset.PublishDefault(b)
	if err := handlers.Register(asset.NewStructHandler(
		"runtime-graph", "Runtime Graph", "scgraph",
	)); err != nil {
		log.Fatalf("handler registration failed: %v", err)
	}

	// ---------------- Sequencer ----------------

	seqGen := sequence.New(0)

	// ---------------- Service ----------------

	svc := service.NewRegistryService(store, handlers, seqGen)
	if err := svc.Recover(); err != nil {
		log.Fatalf("outbox recovery failed: %v", err)
	}

	animOpts := options.New("animgraph", b)
	animOpts.Declare("useGraphAnimation", true)
	animOpts.Declare("showFPS", false)
	if err := svc.Attach(animOpts); err != nil {
		log.Fatalf("options attach failed: %v", err)
	}

	// ---------------- Background Jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bc, err := broadcaster.New(store, []string{"localhost:9092"}, "mimir.events")
	if err != nil {
		log.Fatalf("broadcaster init failed: %v", err)
	}
	defer bc.Close()
	bc.Start(ctx)

	// Snapshot announcements skip the outbox: losing one is harmless
	// and the next export repeats it.
	announcer := kafka.NewProducer([]string{"localhost:9092"}, "mimir.snapshots")
	defer announcer.Close()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if err := svc.ExportOptions("./snapshots"); err != nil {
				log.Printf("[snapshot] export failed: %v", err)
				continue
			}
			seq := seqGen.Current()
			if err := announcer.SendEvent(ctx, seq, []byte(`{"v":1,"type":"snapshot.exported"}`)); err != nil {
				log.Printf("[snapshot] announce failed: %v", err)
			}
		}
	}()

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", ":50051")
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("mimir", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)

	fmt.Println("mimir registry running on :50051")

	if err := grpcSrv.Serve(lis); err != nil {
		log.Fatalf("gRPC server exited: %v", err)
	}
}
