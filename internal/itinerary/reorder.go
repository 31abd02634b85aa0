package itinerary

import (
	"math"

	"github.com/tripdeck/tripdeck/internal/trip"
)

// DragThreshold is the pointer distance a press must travel before it becomes
// a drag rather than a click.
const DragThreshold = 8.0

// ReorderIntent is a fire-and-forget relocation request emitted by the drag
// controller. It carries no persistence guarantee; applying, validating or
// rejecting it is the host's responsibility.
type ReorderIntent struct {
	ItemID   string `json:"itemId"`
	DayIndex int    `json:"dayIndex"`
	Position int    `json:"position"`
}

// DropTargetKind distinguishes the two kinds of drop target.
type DropTargetKind int

const (
	// DropOnDay targets a day bucket directly (empty-bucket drop zone).
	DropOnDay DropTargetKind = iota
	// DropOnItem targets another item (insert-before semantics).
	DropOnItem
)

// DropTarget identifies where a drag was released.
type DropTarget struct {
	Kind     DropTargetKind
	DayIndex int    // set when Kind == DropOnDay
	ItemID   string // set when Kind == DropOnItem
}

// Layout is a snapshot of the board's bucket contents, by item ID, used to
// resolve drop positions. Build one from the current partition.
type Layout struct {
	buckets map[int][]string
}

// LayoutFromPartition builds a Layout from a day partition.
func LayoutFromPartition(buckets map[int][]*trip.Item) *Layout {
	l := &Layout{buckets: make(map[int][]string, len(buckets))}
	for day, items := range buckets {
		ids := make([]string, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		l.buckets[day] = ids
	}
	return l
}

// locate returns the day and index of an item, or ok=false if absent.
func (l *Layout) locate(itemID string) (day, index int, ok bool) {
	for d, ids := range l.buckets {
		for i, id := range ids {
			if id == itemID {
				return d, i, true
			}
		}
	}
	return 0, 0, false
}

// bucketLen returns the length of a day bucket, or ok=false for unknown days.
func (l *Layout) bucketLen(day int) (int, bool) {
	ids, ok := l.buckets[day]
	if !ok {
		return 0, false
	}
	return len(ids), true
}

// dragState is the controller's state machine position.
type dragState int

const (
	stateIdle dragState = iota
	stateDragging
)

// Controller translates drag gestures over the board into reorder intents.
// It never mutates the item list itself; on a successful drop it emits a
// single ReorderIntent to the configured sink. All other outcomes (cancel,
// unresolvable target) leave no observable side effect.
type Controller struct {
	state        dragState
	activeItemID string

	pressedItemID  string
	pressX, pressY float64

	onReorder func(ReorderIntent)
}

// NewController creates a drag controller. onReorder may be nil, in which
// case intents are only returned from Drop.
func NewController(onReorder func(ReorderIntent)) *Controller {
	return &Controller{onReorder: onReorder}
}

// Dragging reports whether a drag is in progress and for which item.
func (c *Controller) Dragging() (string, bool) {
	if c.state != stateDragging {
		return "", false
	}
	return c.activeItemID, true
}

// PointerDown records a press on a draggable item. The drag does not start
// until the pointer travels past DragThreshold.
func (c *Controller) PointerDown(itemID string, x, y float64) {
	if c.state != stateIdle {
		return
	}
	c.pressedItemID = itemID
	c.pressX, c.pressY = x, y
}

// PointerMove promotes a press into a drag once the threshold is exceeded.
func (c *Controller) PointerMove(x, y float64) {
	if c.state != stateIdle || c.pressedItemID == "" {
		return
	}
	dx := x - c.pressX
	dy := y - c.pressY
	if math.Hypot(dx, dy) < DragThreshold {
		return
	}
	c.state = stateDragging
	c.activeItemID = c.pressedItemID
}

// Grab starts a keyboard-initiated drag immediately, without a threshold.
func (c *Controller) Grab(itemID string) {
	if c.state != stateIdle {
		return
	}
	c.state = stateDragging
	c.activeItemID = itemID
}

// Cancel abandons the current drag. No intent is emitted.
func (c *Controller) Cancel() {
	c.reset()
}

// Drop ends the drag at the given target, resolved against the layout.
//
// A day target yields the tail position of that bucket. An item target yields
// that item's day and index (insert-before). Unknown days or items resolve to
// no intent. Target validity is purely positional; business rules such as
// availability windows are not checked here.
func (c *Controller) Drop(target DropTarget, layout *Layout) (ReorderIntent, bool) {
	if c.state != stateDragging {
		c.reset()
		return ReorderIntent{}, false
	}

	itemID := c.activeItemID
	c.reset()

	var intent ReorderIntent
	switch target.Kind {
	case DropOnDay:
		length, ok := layout.bucketLen(target.DayIndex)
		if !ok {
			return ReorderIntent{}, false
		}
		intent = ReorderIntent{ItemID: itemID, DayIndex: target.DayIndex, Position: length}
	case DropOnItem:
		day, index, ok := layout.locate(target.ItemID)
		if !ok {
			return ReorderIntent{}, false
		}
		intent = ReorderIntent{ItemID: itemID, DayIndex: day, Position: index}
	default:
		return ReorderIntent{}, false
	}

	if c.onReorder != nil {
		c.onReorder(intent)
	}
	return intent, true
}

func (c *Controller) reset() {
	c.state = stateIdle
	c.activeItemID = ""
	c.pressedItemID = ""
	c.pressX, c.pressY = 0, 0
}
