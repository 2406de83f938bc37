package main

import (
	"TagSpectra/internal/config"
	"TagSpectra/internal/engine/protocol"
	"TagSpectra/internal/model"
	"TagSpectra/internal/subscription"
	"TagSpectra/pkg/taglist"
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
)

func main() {
	mode := flag.String("mode", "sub", "Operating mode: 'pub' to publish change events, 'sub' to subscribe and print.")
	natsURL := flag.String("nats", nats.DefaultURL, "URL of the NATS server.")
	subject := flag.String("subject", "tagspectra.events", "Subject to publish/subscribe on.")
	tagFile := flag.String("tags", "", "Tag list file for synthetic publishing (required for pub mode without -replay).")
	replay := flag.String("replay", "", "File of wire lines to replay instead of synthesizing values.")
	interval := flag.Duration("interval", time.Second, "Publish interval per round of tag updates.")
	flag.Parse()

	cfg := config.NATSConfig{URL: *natsURL, Subject: *subject}

	switch *mode {
	case "pub":
		runPublisher(cfg, *tagFile, *replay, *interval)
	case "sub":
		runSubscriber(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runPublisher publishes change events: either replayed from a file of wire
// lines, or synthesized for every tag in the tag list with a shared
// timestamp per round, which is the shape a batch-reporting source produces.
func runPublisher(cfg config.NATSConfig, tagFile, replay string, interval time.Duration) {
	pub, err := subscription.NewPublisher(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if replay != "" {
		go replayFile(pub, replay, interval)
	} else {
		if tagFile == "" {
			log.Fatalf("Either -replay or -tags is required in pub mode.")
		}
		tags, err := taglist.Read(tagFile)
		if err != nil {
			log.Fatalf("Failed to read tag list: %v", err)
		}
		go synthesize(pub, tags, interval)
	}

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}

func replayFile(pub *subscription.Publisher, path string, interval time.Duration) {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open replay file: %v", err)
	}
	defer file.Close()

	published := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := pub.Publish(model.ChangeEvent{Raw: line}); err != nil {
			log.Printf("Failed to publish event: %v", err)
		}
		published++
		time.Sleep(interval)
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Replay aborted: %v", err)
	}
	log.Printf("Replay finished, %d events published.", published)
}

func synthesize(pub *subscription.Publisher, tags []string, interval time.Duration) {
	values := make(map[string]float64, len(tags))
	for _, tag := range tags {
		values[tag] = rand.Float64() * 100
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	rounds := 0
	for range ticker.C {
		now := time.Now()
		for _, tag := range tags {
			if tag == "" {
				continue
			}
			values[tag] += rand.Float64()*2 - 1
			ev := model.ChangeEvent{
				Tag:       tag,
				Timestamp: now,
				Value:     strconv.FormatFloat(values[tag], 'f', 2, 64),
				Quality:   "Good",
			}
			if err := pub.Publish(ev); err != nil {
				log.Printf("Failed to publish event: %v", err)
			}
		}
		rounds++
		if rounds%60 == 0 {
			log.Printf("%d rounds of tag updates published...", rounds)
		}
	}
}

// runSubscriber prints every decoded change event seen on the subject.
func runSubscriber(cfg config.NATSConfig) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Close()

	sub, err := nc.Subscribe(cfg.Subject, func(msg *nats.Msg) {
		ev, err := protocol.ParseLine(string(msg.Data))
		if err != nil {
			log.Printf("Malformed event: %v", err)
			return
		}
		log.Printf("Received: tag=%s ts=%s value=%s quality=%s",
			ev.Tag, ev.Timestamp.Format(time.RFC3339Nano), ev.Value, ev.Quality)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Unsubscribe()
	log.Printf("Subscribed to '%s'. Waiting for messages...", cfg.Subject)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}
