/*
go-carcount turns a stream of per-frame vehicle detections into reliable
directional counts across one or more virtual counting lines.

The package is detector agnostic.  An external object detector (YOLO on a
GPU/NPU, a gocv DNN model, or plain background subtraction) supplies bounding
boxes once per frame, optionally with persistent track identifiers, and a
Counter session converts those into per-direction counters under a
single-count-per-vehicle rule.  When the detector cannot supply identities
the tracker subpackage can assign them, or the Counter can fall back to a
spatio-temporal deduplication mode.

See example code and usage in the example subdirectory.
*/
package carcount
