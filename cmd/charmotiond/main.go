// Command charmotiond runs a headless demo simulation: a handful of characters
// walking, jumping and riding a platform across a small synthetic scene,
// logging their state every few ticks. Useful for eyeballing resolver
// behaviour without an engine attached.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/charmotion/charmotion/character"
	"github.com/charmotion/charmotion/character/movement"
	_ "github.com/charmotion/charmotion/character/state"
	"github.com/charmotion/charmotion/scene"
	"github.com/charmotion/charmotion/worker"
)

func main() {
	configPath := flag.String("config", "charmotion.toml", "path to the movement config file")
	ticks := flag.Int("ticks", 300, "number of fixed ticks to simulate")
	count := flag.Int("characters", 3, "number of characters to simulate")
	flag.Parse()

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}

	conf, err := character.LoadConfig(*configPath)
	if err != nil {
		log.Warnf("config: %v, writing defaults", err)
		if err := character.SaveDefault(*configPath); err != nil {
			log.Errorf("config: %v", err)
		}
		conf = character.DefaultConfig()
	}

	sc := scene.New()
	sc.AddBox(cube.Box(-20, -1, -20, 20, 0, 20), scene.LayerStatic)
	sc.AddBox(cube.Box(4, 0, -4, 6, 0.3, 4), scene.LayerStatic)

	platform := sc.AddBody(scene.LayerPlatform)
	platform.AddBox(cube.Box(-1.5, -0.25, -1.5, 1.5, 0.25, 1.5))
	platform.SetPosition(mgl32.Vec3{8, 0.25, 0})

	chars := make([]*character.Character, *count)
	for i := range chars {
		c := character.New(log, conf, sc, mgl32.Vec3{0, 0.05, float32(i) - 1})
		movement.Register(c)
		c.SetInputDirection(mgl32.Vec3{1, 0, 0})
		chars[i] = c
	}

	const dt = float32(1.0 / 50.0)
	jobs := make([]func(), len(chars))
	for i := 0; i < *ticks; i++ {
		if i == 100 {
			for _, c := range chars {
				c.SetJumpPressed(true)
			}
		}

		// Characters never share state; ticking them is parallel per tick.
		for j, c := range chars {
			c := c
			jobs[j] = func() {
				c.Tick(dt)
				c.VisualTick(dt)
				c.SetJumpPressed(false)
			}
		}
		worker.Batch(jobs...)

		platform.SetPosition(platform.Position().Add(mgl32.Vec3{0.02, 0, 0}))

		if i%25 == 0 {
			for j, c := range chars {
				log.WithFields(logrus.Fields{
					"tick":     i,
					"char":     fmt.Sprintf("c%d", j),
					"state":    c.ActiveState(),
					"grounded": c.Context().IsGrounded,
				}).Infof("pos=%v", c.Position())
			}
		}
	}

	os.Exit(0)
}
