package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log"
	"net/http"
	"time"

	"github.com/jaluraya/go-carcount"
	"github.com/jaluraya/go-carcount/render"
	"github.com/jaluraya/go-carcount/tracker"
	"gocv.io/x/gocv"
)

var (
	// FPS is the number of FPS to simulate
	FPS         = 30
	FPSinterval = time.Duration(float64(time.Second) / float64(FPS))
)

// ResultFrame is a struct to wrap the gocv byte buffer and error result
type ResultFrame struct {
	Buf *gocv.NativeByteBuffer
	Err error
}

// MotionDetector finds moving objects in video frames using background
// subtraction.  It stands in for a real vehicle detector so the demo runs
// without any model file, expect it to merge vehicles that overlap in
// frame
type MotionDetector struct {
	mog2    gocv.BackgroundSubtractorMOG2
	kernel  gocv.Mat
	minArea float64
}

// NewMotionDetector returns a background subtraction based detector.
// minArea discards contours smaller than this pixel area
func NewMotionDetector(minArea float64) *MotionDetector {
	return &MotionDetector{
		mog2:    gocv.NewBackgroundSubtractorMOG2(),
		kernel:  gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5)),
		minArea: minArea,
	}
}

// Close frees the OpenCV resources held by the detector
func (m *MotionDetector) Close() {
	m.mog2.Close()
	m.kernel.Close()
}

// Detect returns a bounding box detection for each moving region in the
// frame
func (m *MotionDetector) Detect(img gocv.Mat) []carcount.Detection {

	mask := gocv.NewMat()
	defer mask.Close()

	m.mog2.Apply(img, &mask)

	// drop shadows (127 in the MOG2 mask) and close up holes
	gocv.Threshold(mask, &mask, 200, 255, gocv.ThresholdBinary)
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, m.kernel)
	gocv.Dilate(mask, &mask, m.kernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal,
		gocv.ChainApproxSimple)
	defer contours.Close()

	var dets []carcount.Detection

	for i := 0; i < contours.Size(); i++ {

		contour := contours.At(i)

		if gocv.ContourArea(contour) < m.minArea {
			continue
		}

		rect := gocv.BoundingRect(contour)

		dets = append(dets, carcount.Detection{
			Box: carcount.BoxRect{
				Left:   rect.Min.X,
				Top:    rect.Min.Y,
				Right:  rect.Max.X,
				Bottom: rect.Max.Y,
			},
			Class:       0,
			Probability: 1.0,
			TrackID:     carcount.NoTrackID,
		})
	}

	return dets
}

// Demo defines the struct for running the vehicle counting demo
type Demo struct {
	// vidBuffer buffers the video frames into memory
	vidBuffer []gocv.Mat
	// counter is the counting session shared by the stream and the counts
	// endpoints
	counter *carcount.Counter
	// dims are the video frame dimensions
	dims carcount.FrameDims
	// minArea is the motion detector's contour area threshold
	minArea float64
	// font used for all annotations
	font render.Font
}

// NewDemo returns an instance of Demo, a streaming HTTP server showing
// video with vehicle counting overlays
func NewDemo(vidFile string, ratio float64, tolerance int, untracked bool,
	minArea float64) (*Demo, error) {

	d := &Demo{
		minArea: minArea,
		font:    render.DefaultFont(),
	}

	err := d.bufferVideo(vidFile)

	if err != nil {
		return nil, fmt.Errorf("Error buffering video: %w", err)
	}

	if len(d.vidBuffer) == 0 {
		return nil, fmt.Errorf("video %s contains no frames", vidFile)
	}

	d.dims = carcount.FrameDims{
		Width:  d.vidBuffer[0].Cols(),
		Height: d.vidBuffer[0].Rows(),
	}

	log.Printf("Video frame size %dx%d, %d frames buffered",
		d.dims.Width, d.dims.Height, len(d.vidBuffer))

	params := carcount.DefaultParams()

	if untracked {
		params.Mode = carcount.ModeUntracked
	}

	d.counter = carcount.NewCounter(params)

	err = d.counter.Configure(d.dims.Height, []carcount.LineSpec{{
		Name:      "main",
		Ratio:     ratio,
		Tolerance: tolerance,
		Rule: map[carcount.Direction]string{
			carcount.DirectionDown: "down",
			carcount.DirectionUp:   "up",
		},
	}})

	if err != nil {
		return nil, fmt.Errorf("Error configuring counter: %w", err)
	}

	return d, nil
}

// bufferVideo reads in the video frames and saves them to a buffer
func (d *Demo) bufferVideo(vidFile string) error {

	// open handle to read frames of video file
	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return err
	}

	defer video.Close()

	d.vidBuffer = make([]gocv.Mat, 0)

	for {
		img := gocv.NewMat()

		// read the next frame from the video
		if ok := video.Read(&img); !ok {
			// reached last video frame
			break
		}

		// Check if the frame is empty
		if img.Empty() {
			continue
		}

		// push frame onto buffer
		d.vidBuffer = append(d.vidBuffer, img)
	}

	return nil
}

// Stream is the HTTP handler function used to stream video frames to
// browser.  The counting session is shared, a second client watching the
// stream processes the same frames again and inflates the counts, run one
// viewer at a time
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	log.Printf("New client connection established\n")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	// pointer to position in video buffer
	frameNum := -1

	// detector and tracker keep per stream history, create fresh instances
	// per connection
	detector := NewMotionDetector(d.minArea)
	defer detector.Close()

	track := tracker.DefaultTracker()
	trail := tracker.NewTrail(90)

	ticker := time.NewTicker(FPSinterval)
	defer ticker.Stop()

	// chan to receive processed frames
	recvFrame := make(chan ResultFrame, 30)

loop:
	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected\n")
			break loop

		// simulate reading a web camera at FPS
		case <-ticker.C:

			// increment pointer to next image in the video buffer
			frameNum++
			if frameNum > len(d.vidBuffer)-1 {
				// end of video is an outcome, not an error.  log the final
				// counts, then loop back to the start with a clean session
				log.Printf("Video complete, final counts: %s",
					formatCounts(d.counter.Counts()))

				frameNum = 0
				track.Reset()
				trail.Reset()
				d.counter.Reset()
			}

			go d.ProcessFrame(d.vidBuffer[frameNum], recvFrame,
				detector, track, trail)

		case buf := <-recvFrame:

			if buf.Err != nil {
				log.Printf("Error occured during ProcessFrame: %v", buf.Err)

			} else {
				// Write the image to the response writer
				w.Write([]byte("--frame\r\n"))
				w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
				w.Write(buf.Buf.GetBytes())
				w.Write([]byte("\r\n"))

				// Flush the buffer
				flusher, ok := w.(http.Flusher)
				if ok {
					flusher.Flush()
				}
			}

			buf.Buf.Close()
		}
	}
}

// ProcessFrame takes an image from the video, runs motion detection,
// tracking and counting on it, annotates the image and returns the result
// encoded as a JPG file
func (d *Demo) ProcessFrame(img gocv.Mat, retChan chan<- ResultFrame,
	detector *MotionDetector, track *tracker.Tracker, trail *tracker.Trail) {

	resImg := gocv.NewMat()
	defer resImg.Close()

	dets := detector.Detect(img)

	// assign stable identities to the motion detections
	trackObjs := track.Update(carcount.ObjectsFromDetections(dets))

	for _, trackObj := range trackObjs {
		trail.Add(trackObj)
	}

	res, err := d.counter.Process(
		carcount.DetectionsFromTracks(trackObjs), d.dims)

	if err != nil {
		retChan <- ResultFrame{Err: err}
		return
	}

	// copy the source image and annotate the copy
	img.CopyTo(&resImg)

	render.CountingLines(&resImg, res.Lines, d.font, 2)
	render.Boxes(&resImg, res.Objects, d.font, 2)
	render.Trail(&resImg, trackObjs, trail, render.DefaultTrailStyle())
	render.CounterPanel(&resImg, res.Counts, d.font)

	// Encode the image to JPEG format
	buf, err := gocv.IMEncode(".jpg", resImg)

	retChan <- ResultFrame{
		Buf: buf,
		Err: err,
	}
}

// Counts is the HTTP handler returning the current counter snapshot as
// JSON
func (d *Demo) Counts(w http.ResponseWriter, r *http.Request) {

	counts := d.counter.Counts()

	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(map[string]interface{}{
		"counters": counts.Counters,
		"total":    counts.Total,
	})

	if err != nil {
		log.Printf("Error encoding counts: %v", err)
	}
}

// Reset is the HTTP handler that zeroes the counting session
func (d *Demo) Reset(w http.ResponseWriter, r *http.Request) {

	d.counter.Reset()
	log.Printf("Counting session reset\n")

	w.WriteHeader(http.StatusNoContent)
}

// formatCounts renders a counter snapshot for logging
func formatCounts(counts carcount.Counts) string {

	out := fmt.Sprintf("total=%d", counts.Total)

	for name, n := range counts.Counters {
		out += fmt.Sprintf(" %s=%d", name, n)
	}

	return out
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	vidFile := flag.String("v", "../data/traffic.mp4", "Video file to run vehicle counting on")
	httpAddr := flag.String("a", "localhost:8080", "HTTP Address to run server on, format address:port")
	ratio := flag.Float64("r", 0.5, "Vertical position of the counting line as a fraction of frame height")
	tolerance := flag.Int("t", 15, "Tolerance band in pixels either side of the counting line")
	untracked := flag.Bool("u", false, "Count with the untracked fallback mode instead of track identities")
	minArea := flag.Float64("m", 500, "Minimum contour area in pixels treated as a vehicle")

	flag.Parse()

	demo, err := NewDemo(*vidFile, *ratio, *tolerance, *untracked, *minArea)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	http.HandleFunc("/stream", demo.Stream)
	http.HandleFunc("/counts", demo.Counts)
	http.HandleFunc("/reset", demo.Reset)

	// start http server
	log.Println(fmt.Sprintf("Open browser and view video at http://%s/stream",
		*httpAddr))
	log.Fatal(http.ListenAndServe(*httpAddr, nil))
}
