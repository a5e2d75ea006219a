package rhachis

import (
	"sync"
	"testing"

	"github.com/gekko3d/rhachis/graphics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_SerializesAccess(t *testing.T) {
	n := 0
	g := NewGuard(&n)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				g.With(func(v *int) { *v++ })
			}
		}()
	}
	wg.Wait()

	v := g.Lock()
	defer g.Unlock()
	assert.Equal(t, 8000, *v)
}

func TestGameData_ExitLastCodeWins(t *testing.T) {
	d := &GameData{}
	exit, _ := d.exitRequested()
	assert.False(t, exit)

	d.Exit(2)
	d.Exit(5)
	exit, code := d.exitRequested()
	assert.True(t, exit)
	assert.Equal(t, 5, code)
}

func TestGameData_Accessors(t *testing.T) {
	p := NewHeadlessPlatform(800, 600)
	cfg := testConfig()
	cfg.Graphics.ClearColor = [4]float64{0.5, 0, 0, 1}
	app := NewAppBuilder().
		WithConfig(cfg).
		WithPlatform(p).
		WithShaderCompiler(graphics.ReflectCompiler{}).
		Build()

	var data *GameData
	require.NoError(t, app.Init(func(d *GameData) (Game, error) {
		data = d
		return &testGame{renderer: graphics.EmptyRenderer{}}, nil
	}))
	require.Same(t, data, app.Data())

	ctx := data.Graphics().Lock()
	assert.Equal(t, uint32(800), ctx.Config().Width)
	data.Graphics().Unlock()

	assert.Equal(t, cfg, data.Config())
	assert.Equal(t, graphics.Color{R: 0.5, A: 1}, data.ClearColor())
	assert.NotNil(t, data.Logger())
	data.Audio().With(func(a *Audio) {
		assert.Equal(t, 44100, int(a.SampleRate()))
	})
	w, h := data.WindowSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}
