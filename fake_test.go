package scanline

import (
	"errors"
	"sync/atomic"
	"time"
)

var (
	errBadScene  = errors.New("fake: malformed scene")
	errRowFailed = errors.New("fake: row failed")
	errClose     = errors.New("fake: close failed")
)

// fakeScene configures the units built by a fakeFactory.
type fakeScene struct {
	width, height int
	failRow       int           // row that fails, -1 for none
	delay         time.Duration // per-row render time
	block         <-chan struct{}
	blockRow      int  // row that waits on block, -1 for none
	blockAll      bool // every row waits on block
	shortRow      int  // row returned one byte short, -1 for none
	closeErr      error
	panicInit     bool
}

func newFakeScene(width, height int) fakeScene {
	return fakeScene{width: width, height: height, failRow: -1, blockRow: -1, shortRow: -1}
}

// fakeCounters tracks unit lifecycles across all workers.
type fakeCounters struct {
	created atomic.Int32
	closed  atomic.Int32
	rows    atomic.Int32
}

// fakeFactory returns a factory that rejects the scene input "bad".
func fakeFactory(scene fakeScene) (UnitFactory, *fakeCounters) {
	c := &fakeCounters{}
	return func(sceneInput string) (RenderUnit, error) {
		if scene.panicInit {
			panic("fake: init panic")
		}
		if sceneInput == "bad" {
			return nil, errBadScene
		}
		c.created.Add(1)
		return &fakeUnit{scene: scene, counters: c}, nil
	}, c
}

type fakeUnit struct {
	scene    fakeScene
	counters *fakeCounters
}

func (u *fakeUnit) Dimensions() Dimensions {
	return Dimensions{Width: u.scene.width, Height: u.scene.height}
}

func (u *fakeUnit) RenderRow(y int) ([]byte, error) {
	if (u.scene.blockAll || y == u.scene.blockRow) && u.scene.block != nil {
		<-u.scene.block
	}
	if u.scene.delay > 0 {
		time.Sleep(u.scene.delay)
	}
	if y == u.scene.failRow {
		return nil, errRowFailed
	}
	u.counters.rows.Add(1)

	row := fakeRow(u.scene.width, y)
	if y == u.scene.shortRow {
		row = row[:len(row)-1]
	}
	return row, nil
}

func (u *fakeUnit) Close() error {
	u.counters.closed.Add(1)
	return u.scene.closeErr
}

// fakeRow is the deterministic content of row y.
func fakeRow(width, y int) []byte {
	row := make([]byte, width*ChannelDepth)
	for x := range width {
		i := x * ChannelDepth
		row[i+0] = byte(x)
		row[i+1] = byte(y)
		row[i+2] = byte(x ^ y)
		row[i+3] = 255
	}
	return row
}
