package carcount

import "github.com/jaluraya/go-carcount/tracker"

// ObjectsFromDetections converts raw detections into tracker objects so a
// caller without a tracking detector can run them through the tracker
// subpackage for identity assignment
func ObjectsFromDetections(dets []Detection) []tracker.Object {

	var objs []tracker.Object

	for _, det := range dets {

		x := float32(det.Box.Left)
		y := float32(det.Box.Top)
		width := float32(det.Box.Right - det.Box.Left)
		height := float32(det.Box.Bottom - det.Box.Top)

		objs = append(objs, tracker.Object{
			Rect:  tracker.NewRect(x, y, width, height),
			Label: det.Class,
			Prob:  det.Probability,
		})
	}

	return objs
}

// DetectionsFromTracks converts tracker output back into detections
// carrying the assigned track ids, ready for Counter.Process
func DetectionsFromTracks(tracks []*tracker.Track) []Detection {

	var dets []Detection

	for _, t := range tracks {

		dets = append(dets, Detection{
			Box: BoxRect{
				Left:   int(t.Rect.X),
				Top:    int(t.Rect.Y),
				Right:  int(t.Rect.BRX()),
				Bottom: int(t.Rect.BRY()),
			},
			Class:       t.Label,
			Probability: t.Prob,
			TrackID:     t.ID,
		})
	}

	return dets
}
