package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
)

// RotationAxis tracks position and velocity for one rotation axis with spring decay
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity of Velocity itself
}

// NewRotationAxis creates an axis whose velocity is critically damped toward 0.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState holds the model rotation.
type RotationState struct {
	Pitch, Yaw, Roll RotationAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	r := &RotationState{fps: fps}
	r.Reset()
	return r
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Roll = NewRotationAxis(r.fps)
}

// Matrix returns the model rotation.
func (r *RotationState) Matrix() math3d.Mat4 {
	return math3d.RotateX(float32(r.Pitch.Position)).
		Mul(math3d.RotateY(float32(r.Yaw.Position))).
		Mul(math3d.RotateZ(float32(r.Roll.Position)))
}

// ViewState holds the toggles driven by the keyboard and mouse.
type ViewState struct {
	Model          render.LightingModel
	TextureEnabled bool
	Wireframe      bool
	LightMode      bool        // aiming the light with the mouse
	LightDir       math3d.Vec3 // direction the light travels
	PendingLight   math3d.Vec3 // light direction while aiming
	ShowHUD        bool
}

// ScreenToLightDir maps a terminal cell to a light direction. The screen is
// treated as a hemisphere in front of the model; the light shines from the
// pointed spot toward the model.
func ScreenToLightDir(screenX, screenY, width, height int) math3d.Vec3 {
	nx := (float64(screenX)/float64(width))*2 - 1
	ny := (float64(screenY)/float64(height))*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	nz := math.Sqrt(1 - lenSq)

	return math3d.V3(float32(-nx), float32(ny), float32(-nz)).Normalize()
}

// HUD renders an overlay with model info and controls
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{
		filename:  filename,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD directly to the terminal after the frame.
func (h *HUD) Render(width, height int, view *ViewState, stats render.DrawStats) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows so toggling off works.
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if view.LightMode {
		msg := fmt.Sprintf("%s%s%s ◉ LIGHT MODE - Move mouse to aim, click to set, Esc to cancel %s",
			bgBlack, bold, fgYellow, reset)
		fmt.Print(moveTo(height, max((width-60)/2, 1)) + msg)
		return
	}
	if !view.ShowHUD {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	title := fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.filename, reset)
	fmt.Print(moveTo(1, max((width-len(h.filename)-2)/2, 1)) + title)

	polys := fmt.Sprintf("%s%s%s %d/%d tris %s", bgBlack, fgCyan, bold, stats.Rasterized, h.polyCount, reset)
	fmt.Print(moveTo(1, max(width-20, 1)) + polys)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modes := fmt.Sprintf("%s%s %s Texture  %s Wireframe  M: %s %s",
		bgBlack, fgWhite, check(view.TextureEnabled), check(view.Wireframe), view.Model, reset)
	fmt.Print(moveTo(height, 1) + modes)

	hint := fmt.Sprintf("%s%s%s L: aim light %s", bgBlack, dim, fgYellow, reset)
	fmt.Print(moveTo(height, max(width-14, 1)) + hint)
}

const torqueStrength = 3.0

// viewer is the interactive terminal session. All state is owned by the
// frame loop; terminal events are drained between frames.
type viewer struct {
	cfg   *Config
	flags *flag.FlagSet
	scene *Scene

	term          *uv.Terminal
	width, height int
	fb            *render.FrameBuffer
	rast          *render.Rasterizer
	wire          *render.Wireframe
	cam           *render.Camera
	bg            uint32

	rotation *RotationState
	view     *ViewState
	hud      *HUD

	torque     struct{ pitch, yaw, roll float64 }
	mouseDown  bool
	lastX      int
	lastY      int
	cancel     context.CancelFunc
	configPath string
	events     <-chan uv.Event
	reloads    <-chan *Config
}

func newViewer(cfg *Config, fs *flag.FlagSet, scene *Scene, configPath string) (*viewer, error) {
	model, err := cfg.LightingModel()
	if err != nil {
		return nil, err
	}
	light, err := cfg.LightDir()
	if err != nil {
		return nil, err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}
	return &viewer{
		cfg:      cfg,
		flags:    fs,
		scene:    scene,
		bg:       bg,
		cam:      render.NewCamera(),
		rotation: NewRotationState(cfg.FPS),
		view: &ViewState{
			Model:          model,
			TextureEnabled: true,
			LightDir:       light,
		},
		hud:        NewHUD(scene.Name, scene.Mesh.TriangleCount()),
		configPath: configPath,
	}, nil
}

// resize allocates a framebuffer of two pixel rows per terminal row.
func (v *viewer) resize(width, height int) {
	v.width, v.height = width, height
	v.fb = render.NewFrameBuffer(max(width, 1), max(height*2, 1))
	if v.rast == nil {
		v.rast = render.NewRasterizer(v.fb)
	} else {
		v.rast.SetFrameBuffer(v.fb)
	}
	v.wire = render.NewWireframe(v.fb)
	v.cam.SetAspect(float32(v.fb.Width) / float32(v.fb.Height))
}

func (v *viewer) resetCamera() {
	v.cam.SetOrbit(v.cam.Distance, 0, 0)
	v.cfg.ApplyCamera(v.cam)
}

func (v *viewer) run(ctx context.Context) error {
	ctx, v.cancel = context.WithCancel(ctx)
	defer v.cancel()

	if v.configPath != "" {
		var err error
		if v.reloads, err = watchConfig(ctx, v.configPath); err != nil {
			slog.Warn("live reload disabled", "err", err)
		}
	}

	term := uv.DefaultTerminal()
	v.term = term
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	v.resize(width, height)
	v.resetCamera()

	v.events = term.Events()
	targetDuration := time.Second / time.Duration(v.cfg.FPS)
	lastFrame := time.Now()

	for {
		if !v.drain(ctx) {
			return nil
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		// Key release events are unreliable, so held torque decays.
		v.rotation.ApplyImpulse(v.torque.pitch*dt, v.torque.yaw*dt, v.torque.roll*dt)
		v.torque.pitch *= 0.9
		v.torque.yaw *= 0.9
		v.torque.roll *= 0.9
		v.rotation.Update()

		v.drawFrame()
		v.fb.Draw(term, uv.Rect(0, 0, v.width, v.height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}
		v.hud.UpdateFPS()
		v.hud.Render(v.width, v.height, v.view, v.rast.Stats)

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// drain handles every queued event and reload without blocking. A closed
// channel is dropped from the select. It returns false once ctx is done.
func (v *viewer) drain(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-v.events:
			if !ok {
				v.events = nil
				continue
			}
			v.handleEvent(ev)
		case cfg, ok := <-v.reloads:
			if !ok {
				v.reloads = nil
				continue
			}
			v.reload(cfg)
		default:
			return true
		}
	}
}

// drawFrame renders the scene into the framebuffer.
func (v *viewer) drawFrame() {
	light := v.view.LightDir
	if v.view.LightMode {
		light = v.view.PendingLight
	}

	v.fb.Clear(v.bg)
	v.rast.ResetStats()
	ctx := v.scene.Context(v.cam, v.rotation.Matrix(), light)
	v.scene.Draw(v.rast, ctx, v.view.Model, v.view.TextureEnabled)
	if v.view.Wireframe {
		v.scene.DrawOverlay(v.wire, ctx)
	}
}

// reload applies a changed scene file. Command line flags keep precedence.
func (v *viewer) reload(cfg *Config) {
	if err := cfg.ApplyFlags(v.flags); err != nil {
		slog.Warn("config reload failed", "err", err)
		return
	}
	cfg.Model = v.cfg.Model
	if err := v.scene.Configure(cfg); err != nil {
		slog.Warn("config reload failed", "err", err)
		return
	}
	if model, err := cfg.LightingModel(); err == nil {
		v.view.Model = model
	}
	if light, err := cfg.LightDir(); err == nil {
		v.view.LightDir = light
	}
	if bg, err := cfg.BackgroundColor(); err == nil {
		v.bg = bg
	}
	v.cfg = cfg
}

func (v *viewer) handleEvent(ev uv.Event) {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.term.Erase()
		v.term.Resize(ev.Width, ev.Height)
		v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape"):
			if v.view.LightMode {
				v.view.LightMode = false
			} else {
				v.cancel()
			}
		case ev.MatchString("ctrl+c"):
			v.cancel()
		case ev.MatchString("q"):
			v.torque.roll = -torqueStrength
		case ev.MatchString("e"):
			v.torque.roll = torqueStrength
		case ev.MatchString("r"):
			v.rotation.Reset()
			v.resetCamera()
		case ev.MatchString("w", "up"):
			v.torque.pitch = -torqueStrength
		case ev.MatchString("s", "down"):
			v.torque.pitch = torqueStrength
		case ev.MatchString("a", "left"):
			v.torque.yaw = -torqueStrength
		case ev.MatchString("d", "right"):
			v.torque.yaw = torqueStrength
		case ev.MatchString("space"):
			v.rotation.ApplyImpulse(
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
			)
		case ev.MatchString("+", "="):
			v.cam.Zoom(0.9)
		case ev.MatchString("-", "_"):
			v.cam.Zoom(1 / 0.9)
		case ev.MatchString("m"):
			v.view.Model = v.view.Model.Next()
		case ev.MatchString("t"):
			v.view.TextureEnabled = !v.view.TextureEnabled
		case ev.MatchString("x"):
			v.view.Wireframe = !v.view.Wireframe
		case ev.MatchString("l"):
			v.view.LightMode = true
			v.view.PendingLight = v.view.LightDir
		case ev.MatchString("?"), ev.MatchString("shift+/"):
			v.view.ShowHUD = !v.view.ShowHUD
		}

	case uv.KeyReleaseEvent:
		switch {
		case ev.MatchString("w", "up", "s", "down"):
			v.torque.pitch = 0
		case ev.MatchString("a", "left", "d", "right"):
			v.torque.yaw = 0
		case ev.MatchString("q", "e"):
			v.torque.roll = 0
		}

	case uv.MouseClickEvent:
		if v.view.LightMode {
			v.view.LightDir = v.view.PendingLight
			v.view.LightMode = false
		} else {
			v.mouseDown = true
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseReleaseEvent:
		if !v.view.LightMode {
			v.mouseDown = false
		}

	case uv.MouseMotionEvent:
		if v.view.LightMode {
			v.view.PendingLight = ScreenToLightDir(ev.X, ev.Y, v.width, v.height)
		} else if v.mouseDown {
			dx := ev.X - v.lastX
			dy := ev.Y - v.lastY
			v.rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.cam.Zoom(0.9)
		case uv.MouseWheelDown:
			v.cam.Zoom(1 / 0.9)
		}
	}
}
