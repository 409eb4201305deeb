package movement

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// pass is the scratch state of one resolution pass. Passes are pooled; they
// hold no per-character data beyond the lifetime of a single Move call.
type pass struct {
	contacts    int
	firstNormal mgl32.Vec3
	upGained    float32
}

var passPool = sync.Pool{
	New: func() any {
		return &pass{}
	},
}

func newPass() *pass {
	return passPool.Get().(*pass)
}

func putPass(p *pass) {
	p.reset()
	passPool.Put(p)
}

func (p *pass) reset() {
	p.contacts = 0
	p.firstNormal = mgl32.Vec3{}
	p.upGained = 0
}
