package game

// Capture is a ball falling into a pocket during one step.
type Capture struct {
	BallID   int
	PocketID int
	Speed    float64
}

// detectCaptures tests every track against every pocket. Tracks are taken in
// the order given (ascending ball id from World.Tracks) and pockets in table
// order; a ball is captured by the first pocket that claims it.
//
// The test uses the swept segment of the step rather than the end point alone,
// so a fast ball cannot skip over a pocket between two steps. A ball resting at
// a pocket center has a zero-length segment and is captured at any velocity.
func detectCaptures(tracks []Track, pockets []Pocket) []Capture {
	var captures []Capture
	for _, tr := range tracks {
		for _, p := range pockets {
			if segmentDistance(tr.From, tr.To, p.Position) <= p.Radius {
				captures = append(captures, Capture{BallID: tr.BallID, PocketID: p.ID, Speed: tr.Speed})
				break
			}
		}
	}
	return captures
}
