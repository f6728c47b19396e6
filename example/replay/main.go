package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/jaluraya/go-carcount"
)

// frameDetection is one detection as stored in the replay file
type frameDetection struct {
	Left    int     `json:"left"`
	Top     int     `json:"top"`
	Right   int     `json:"right"`
	Bottom  int     `json:"bottom"`
	Class   int     `json:"class"`
	Prob    float32 `json:"prob"`
	TrackID *int64  `json:"track_id,omitempty"`
}

// replayFile is the on disk format, per frame detection lists plus the
// frame dimensions they were produced at
type replayFile struct {
	Width  int                `json:"width"`
	Height int                `json:"height"`
	Frames [][]frameDetection `json:"frames"`
}

// toDetection converts a stored detection to the counting input type
func (d frameDetection) toDetection() carcount.Detection {

	id := carcount.NoTrackID

	if d.TrackID != nil {
		id = *d.TrackID
	}

	return carcount.Detection{
		Box: carcount.BoxRect{
			Left:   d.Left,
			Top:    d.Top,
			Right:  d.Right,
			Bottom: d.Bottom,
		},
		Class:       d.Class,
		Probability: d.Prob,
		TrackID:     id,
	}
}

func loadReplay(file string) (*replayFile, error) {

	data, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading replay file: %w", err)
	}

	var replay replayFile

	if err := json.Unmarshal(data, &replay); err != nil {
		return nil, fmt.Errorf("error parsing replay file: %w", err)
	}

	if replay.Width <= 0 || replay.Height <= 0 {
		return nil, fmt.Errorf("replay file has invalid dimensions %dx%d",
			replay.Width, replay.Height)
	}

	return &replay, nil
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	detFile := flag.String("d", "detections.json", "JSON file of per frame detections to replay")
	ratio := flag.Float64("r", 0.5, "Vertical position of the counting line as a fraction of frame height")
	tolerance := flag.Int("t", 15, "Tolerance band in pixels either side of the counting line")
	untracked := flag.Bool("u", false, "Count with the untracked fallback mode instead of track identities")
	vehiclesOnly := flag.Bool("c", false, "Restrict counting to the COCO vehicle classes")
	verbose := flag.Bool("x", false, "Print the counter snapshot after every frame")

	flag.Parse()

	replay, err := loadReplay(*detFile)

	if err != nil {
		log.Fatalf("Error loading replay: %v", err)
	}

	log.Printf("Replaying %d frames at %dx%d", len(replay.Frames),
		replay.Width, replay.Height)

	params := carcount.DefaultParams()

	if *untracked {
		params.Mode = carcount.ModeUntracked
	}

	if *vehiclesOnly {
		params.EligibleClasses = carcount.VehicleClasses()
	}

	counter := carcount.NewCounter(params)

	err = counter.Configure(replay.Height, []carcount.LineSpec{{
		Name:      "main",
		Ratio:     *ratio,
		Tolerance: *tolerance,
		Rule: map[carcount.Direction]string{
			carcount.DirectionDown: "down",
			carcount.DirectionUp:   "up",
		},
	}})

	if err != nil {
		log.Fatalf("Error configuring counter: %v", err)
	}

	dims := carcount.FrameDims{Width: replay.Width, Height: replay.Height}

	for i, frame := range replay.Frames {

		dets := make([]carcount.Detection, 0, len(frame))

		for _, d := range frame {
			dets = append(dets, d.toDetection())
		}

		res, err := counter.Process(dets, dims)

		if err != nil {
			log.Fatalf("Error processing frame %d: %v", i, err)
		}

		if *verbose {
			log.Printf("frame %d: objects=%d %s", i, len(res.Objects),
				formatCounts(res.Counts))
		}
	}

	log.Printf("Replay complete: %s", formatCounts(counter.Counts()))
}

// formatCounts renders a counter snapshot with the named counters in a
// stable order
func formatCounts(counts carcount.Counts) string {

	names := make([]string, 0, len(counts.Counters))

	for name := range counts.Counters {
		names = append(names, name)
	}

	sort.Strings(names)

	out := fmt.Sprintf("total=%d", counts.Total)

	for _, name := range names {
		out += fmt.Sprintf(" %s=%d", name, counts.Counters[name])
	}

	return out
}
