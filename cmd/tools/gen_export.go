package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"
)

var (
	participants = []string{"Alice", "Bob", "Carol", "Dev", "Priya"}
	phrases      = []string{
		"pizza tonight?",
		"that was a really good movie",
		"running late, sorry",
		"not bad at all",
		"kal milte hain",
		"see you at the station",
		"this is awesome 😀",
		"so sad to miss it 😢",
		"check https://example.com/tickets",
		"ok 👍",
	}
	attachments = []string{"<Media omitted>", "image omitted", "sticker omitted"}
)

type options struct {
	messages int
	seed     int64
	start    time.Time
}

func main() {
	out := flag.String("out", "test_data/chat.txt", "Destination of the generated export")
	messages := flag.Int("messages", 10000, "Number of messages to generate")
	seed := flag.Int64("seed", 42, "Random seed")
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	start := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	if err := generate(f, options{messages: *messages, seed: *seed, start: start}); err != nil {
		fmt.Fprintf(os.Stderr, "Generation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Export generated: %s (%d messages)\n", *out, *messages)
}

// generate writes an android-12h export: one system line, then messages a few minutes apart.
// Roughly one message in ten is an attachment and one in fifteen spans two lines.
func generate(w io.Writer, opts options) error {
	r := rand.New(rand.NewSource(opts.seed))
	buf := bufio.NewWriter(w)
	at := opts.start

	fmt.Fprintln(buf, "Messages and calls are end-to-end encrypted.")
	fmt.Fprintf(buf, "%s - %s created group \"Load test\"\n", stamp(at), participants[0])
	for i := 1; i < opts.messages; i++ {
		at = at.Add(time.Duration(1+r.Intn(90)) * time.Minute)
		sender := participants[r.Intn(len(participants))]
		body := phrases[r.Intn(len(phrases))]
		switch {
		case r.Intn(10) == 0:
			body = attachments[r.Intn(len(attachments))]
		case r.Intn(15) == 0:
			body += "\n" + phrases[r.Intn(len(phrases))]
		}
		fmt.Fprintf(buf, "%s - %s: %s\n", stamp(at), sender, body)
	}
	return buf.Flush()
}

func stamp(at time.Time) string {
	return at.Format("1/2/06, 3:04 PM")
}
