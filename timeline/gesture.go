package timeline

import "sync"

// GestureKind is the kind of pointer gesture in progress.
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureDrag
	GestureResize
)

func (k GestureKind) String() string {
	switch k {
	case GestureDrag:
		return "drag"
	case GestureResize:
		return "resize"
	}
	return "none"
}

// Edge is the card edge grabbed by a resize.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	}
	return "none"
}

// Card is an event card as rendered on a day grid.
type Card struct {
	Key      string  `json:"key"`
	Day      int     `json:"dayOffset"`
	Start    int     `json:"startTimeMinutes"`
	Duration int     `json:"durationMinutes"`
	Top      float64 `json:"top"`
	Height   float64 `json:"height"`
}

// Placement is a (day, start, duration) tuple for one event, produced by a
// committed gesture or drop.
type Placement struct {
	Key       string  `json:"key"`
	DayOffset int     `json:"dayOffset"`
	Start     int     `json:"startTimeMinutes"`
	Duration  int     `json:"durationMinutes"`
	Title     *string `json:"title,omitempty"`
}

// Preview is the render-only override of a card during a gesture.
type Preview struct {
	Key    string      `json:"key"`
	Kind   GestureKind `json:"-"`
	Edge   Edge        `json:"-"`
	Top    float64     `json:"top"`
	Height float64     `json:"height"`
}

// Commit is the result of the last finished gesture.
type Commit struct {
	Placement Placement
	Changed   bool
	Err       error
}

type gestureSession struct {
	kind    GestureKind
	edge    Edge
	card    Card
	originY float64
	deltaY  float64
}

// outcome is the token left by a finished gesture for the next click.
type outcome struct {
	key     string
	changed bool
}

// Controller tracks drag and resize gestures on event cards, one at a time.
// Pointer movement is received through a PointerSource subscription that
// lives exactly as long as the gesture.
type Controller struct {
	grid   Grid
	source PointerSource
	commit func(Placement) error

	mu          sync.Mutex
	session     *gestureSession
	unsubscribe func()
	last        *outcome
	result      *Commit
}

// NewController builds a controller whose committed placements are handed
// to commit.
func NewController(grid Grid, source PointerSource, commit func(Placement) error) *Controller {
	return &Controller{grid: grid, source: source, commit: commit}
}

// PointerDown starts a gesture on card. offsetY is the pointer position
// inside the card and y the position used for later moves. Milestones only
// drag; other cards resize when grabbed within the edge band.
func (c *Controller) PointerDown(card Card, offsetY, y float64) (GestureKind, Edge, error) {
	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return GestureNone, EdgeNone, ErrGestureActive
	}

	s := &gestureSession{kind: GestureDrag, card: card, originY: y}
	if card.Duration > 0 {
		switch {
		case offsetY <= c.grid.EdgeBand:
			s.kind, s.edge = GestureResize, EdgeTop
		case offsetY >= card.Height-c.grid.EdgeBand:
			s.kind, s.edge = GestureResize, EdgeBottom
		}
	}
	c.session = s
	c.result = nil
	c.mu.Unlock()

	unsub := c.source.Subscribe(c.onMove, c.onUp)

	c.mu.Lock()
	if c.session == s {
		c.unsubscribe = unsub
		unsub = nil
	}
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	return s.kind, s.edge, nil
}

// Active reports the gesture in progress, if any.
func (c *Controller) Active() (GestureKind, Edge, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return GestureNone, EdgeNone, ""
	}
	return c.session.kind, c.session.edge, c.session.card.Key
}

// Preview returns the live override of the card being manipulated.
func (c *Controller) Preview() (Preview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s == nil {
		return Preview{}, false
	}
	p := Preview{Key: s.card.Key, Kind: s.kind, Edge: s.edge, Top: s.card.Top, Height: s.card.Height}
	minHeight := c.grid.Height(MinDurationMinutes)
	switch {
	case s.kind == GestureDrag:
		p.Top = s.card.Top + s.deltaY
	case s.edge == EdgeTop:
		d := min(s.deltaY, s.card.Height-minHeight)
		p.Top = s.card.Top + d
		p.Height = s.card.Height - d
	case s.edge == EdgeBottom:
		p.Height = max(s.card.Height+s.deltaY, minHeight)
	}
	return p, true
}

// ConsumeClick reports whether a click on a card should open its editor. A
// gesture that changed its event swallows exactly one following click; any
// other state lets the click through. The token is cleared either way.
func (c *Controller) ConsumeClick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	o := c.last
	c.last = nil
	return o == nil || !o.changed
}

// LastCommit returns and clears the result of the last finished gesture.
func (c *Controller) LastCommit() (Commit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return Commit{}, false
	}
	r := *c.result
	c.result = nil
	return r, true
}

// Close abandons any gesture in progress and drops its subscription.
func (c *Controller) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.session, c.unsubscribe = nil, nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (c *Controller) onMove(y float64) {
	c.mu.Lock()
	if c.session != nil {
		c.session.deltaY = y - c.session.originY
	}
	c.mu.Unlock()
}

func (c *Controller) onUp(y float64) {
	c.mu.Lock()
	s := c.session
	if s == nil {
		c.mu.Unlock()
		return
	}
	s.deltaY = y - s.originY
	unsub := c.unsubscribe
	c.session, c.unsubscribe = nil, nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}

	p, changed := c.resolve(s)
	var err error
	if changed && c.commit != nil {
		err = c.commit(p)
	}

	c.mu.Lock()
	c.last = &outcome{key: p.Key, changed: changed && err == nil}
	c.result = &Commit{Placement: p, Changed: changed, Err: err}
	c.mu.Unlock()
}

func (c *Controller) resolve(s *gestureSession) (Placement, bool) {
	card := s.card
	delta := c.grid.PixelsToMinutes(s.deltaY)
	p := Placement{Key: card.Key, DayOffset: card.Day, Start: card.Start, Duration: card.Duration}

	switch {
	case s.kind == GestureDrag:
		p.Start = clampStart(Snap(card.Start+delta), card.Duration)
	case s.edge == EdgeTop:
		p.Start, p.Duration = resizeTop(card.Start, card.Duration, delta)
	case s.edge == EdgeBottom:
		p.Duration = resizeBottom(card.Start, card.Duration, delta)
	}
	return p, p.Start != card.Start || p.Duration != card.Duration
}

// resizeTop moves the start edge while keeping the end fixed.
func resizeTop(start, duration, delta int) (int, int) {
	end := start + duration
	newStart := max(Snap(start+delta), 0)
	newDur := Snap(end - newStart)
	if newDur < MinDurationMinutes {
		newDur = MinDurationMinutes
		newStart = max(end-MinDurationMinutes, 0)
	}
	if newStart+newDur > MinutesPerDay {
		newDur = MinutesPerDay - newStart
	}
	return newStart, newDur
}

// resizeBottom moves the end edge while keeping the start fixed.
func resizeBottom(start, duration, delta int) int {
	newDur := Snap(duration + delta)
	if newDur < MinDurationMinutes {
		newDur = MinDurationMinutes
	}
	if start+newDur > MinutesPerDay {
		newDur = MinutesPerDay - start
	}
	return newDur
}
