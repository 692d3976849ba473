package photoid

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/dixieflatline76/Passfoto/config"
	"github.com/dixieflatline76/Passfoto/pkg/capture"
	"github.com/dixieflatline76/Passfoto/pkg/ui"
	"github.com/dixieflatline76/Passfoto/util/log"
)

// Plugin is the ID photo production plugin: live framing validation, capture,
// background removal, enhancement and sheet export, all driven from the tray.
type Plugin struct {
	manager    ui.PluginManager
	cfg        *Config
	httpClient *http.Client

	fileSource *capture.FileSource
	bridge     *capture.BridgeSource
	session    *Session

	resultMu   sync.Mutex
	lastResult *Result
}

var (
	instance *Plugin
	once     sync.Once
)

// GetInstance returns the singleton photoid plugin.
func GetInstance() *Plugin {
	once.Do(func() {
		instance = &Plugin{
			httpClient: &http.Client{Timeout: cutoutRequestTimeout},
			fileSource: capture.NewFileSource(),
			bridge:     capture.NewBridgeSource(),
		}
	})
	return instance
}

// preferredSource hands the session bridge frames while a phone is streaming
// and falls back to the loaded still photo otherwise.
type preferredSource struct {
	bridge *capture.BridgeSource
	file   *capture.FileSource
}

func (p *preferredSource) Frame(ctx context.Context) (image.Image, error) {
	if p.bridge.Connected() {
		if frame, err := p.bridge.Frame(ctx); err == nil {
			return frame, nil
		}
	}
	return p.file.Frame(ctx)
}

// Init initializes the photoid plugin with the given PluginManager.
func (p *Plugin) Init(manager ui.PluginManager) {
	p.manager = manager
	p.cfg = GetConfig(manager.GetPreferences())

	cutout := NewCutoutClient(p.cfg.GetRemoteEndpoint(), p.cfg.GetCutoutAPIKey(), p.httpClient)
	source := &preferredSource{bridge: p.bridge, file: p.fileSource}
	p.session = NewSession(source, NewDetectorBank(), NewColorSegmenter(), cutout, p.cfg)
	p.session.OnAssessment = func(a Assessment) {
		log.Debugf("live assessment: %v %s", a.Verdict, a.Message)
	}

	log.Debugf("Photo ID Plugin initialized. Engine=%s, Quantity=%d", p.cfg.GetEngine(), p.cfg.GetCopyQuantity())
}

// Name returns the name of the plugin.
func (p *Plugin) Name() string {
	return "Photo ID"
}

// Activate starts the phone bridge and live validation.
func (p *Plugin) Activate() {
	go func() {
		if err := p.bridge.Start(); err != nil && err != http.ErrServerClosed {
			log.Printf("phone bridge stopped: %v", err)
		}
	}()
	p.session.StartLive()
	log.Print("Photo ID plugin activated")
}

// Deactivate stops live validation and shuts down the bridge.
func (p *Plugin) Deactivate() {
	p.session.StopLive()
	if err := p.bridge.Stop(); err != nil {
		log.Printf("stopping phone bridge: %v", err)
	}
	log.Print("Photo ID plugin deactivated")
}

// CreateTrayMenuItems creates the menu items for the tray menu.
func (p *Plugin) CreateTrayMenuItems() []*fyne.MenuItem {
	items := []*fyne.MenuItem{}

	items = append(items, p.manager.CreateMenuItem("Open Photo...", func() {
		go p.OpenPhoto()
	}, "open.png"))

	items = append(items, p.manager.CreateMenuItem("Show Preview", func() {
		go p.ShowPreview()
	}, "capture.png"))

	items = append(items, p.manager.CreateMenuItem("Capture Photo", func() {
		go p.CapturePhoto()
	}, "capture.png"))

	items = append(items, p.manager.CreateMenuItem("Retake", func() {
		p.RetakePhoto()
	}, "retake.png"))

	quantityMenu := fyne.NewMenuItem(fmt.Sprintf("Copies: %d", p.cfg.GetCopyQuantity()), nil)
	var children []*fyne.MenuItem
	for _, q := range SupportedQuantities {
		q := q
		children = append(children, fyne.NewMenuItem(fmt.Sprintf("%d copies", q), func() {
			p.cfg.SetCopyQuantity(q)
			p.manager.RefreshTrayMenu()
		}))
	}
	quantityMenu.ChildMenu = fyne.NewMenu("", children...)
	items = append(items, quantityMenu)

	items = append(items, p.manager.CreateMenuItem("Export Sheet (JPEG)", func() {
		go p.ExportSheet("jpg")
	}, "export.png"))

	items = append(items, p.manager.CreateMenuItem("Export Sheet (PDF)", func() {
		go p.ExportSheet("pdf")
	}, "export.png"))

	return items
}

// OpenPhoto lets the user pick a still photo as the session frame.
func (p *Plugin) OpenPhoto() {
	path, err := capture.PickPhotoFile()
	if err != nil {
		p.manager.NotifyUser("Open Photo", "No photo selected.")
		log.Debugf("photo picker: %v", err)
		return
	}
	if err := p.fileSource.SetPath(path); err != nil {
		p.manager.NotifyUser("Open Photo", "That file could not be read as a photo.")
		log.Printf("loading photo: %v", err)
		return
	}
	p.manager.NotifyUser("Open Photo", filepath.Base(path)+" loaded.")
}

// ShowPreview opens a window with a quick white-background composite of the
// current frame so the user can judge framing before capturing.
func (p *Plugin) ShowPreview() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	img, err := p.session.Preview(ctx)
	if err != nil && img == nil {
		p.manager.NotifyUser("Preview", "No frame available. Open a photo or connect the phone bridge.")
		log.Debugf("preview: %v", err)
		return
	}

	fyne.Do(func() {
		w := fyne.CurrentApp().NewWindow("Preview")
		c := canvas.NewImageFromImage(img)
		c.FillMode = canvas.ImageFillContain
		w.SetContent(c)
		w.Resize(fyne.NewSize(float32(img.Bounds().Dx()), float32(img.Bounds().Dy())))
		w.Show()
	})
}

// CapturePhoto runs the capture pipeline on the current frame and keeps the
// finished photo for export.
func (p *Plugin) CapturePhoto() {
	if p.session == nil {
		return // hotkey fired before Init
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*cutoutRequestTimeout)
	defer cancel()

	res, err := p.session.Capture(ctx)
	if err != nil {
		p.manager.NotifyUser("Capture", captureFailureMessage(err))
		log.Printf("capture failed: %v", err)
		return
	}

	p.resultMu.Lock()
	p.lastResult = &res
	p.resultMu.Unlock()
	cachePhoto(res.Photo)

	msg := "Photo captured."
	if res.Warning != nil {
		msg = "Photo captured, but the background could not be fully removed."
		log.Printf("capture degraded: %v", res.Warning)
	}
	p.manager.NotifyUser("Capture", msg)
}

// RetakePhoto discards the held photo and its cached copy, then resumes live
// validation.
func (p *Plugin) RetakePhoto() {
	if p.session == nil {
		return
	}
	p.resultMu.Lock()
	p.lastResult = nil
	p.resultMu.Unlock()
	if err := os.RemoveAll(cacheDir()); err != nil {
		log.Printf("clearing capture cache: %v", err)
	}
	p.session.Retake()
	p.manager.NotifyUser("Retake", "Ready for a new photo.")
}

// CycleQuantity advances the copy count to the next supported value. Bound to
// a global hotkey so the sheet can be resized without opening the tray menu.
func (p *Plugin) CycleQuantity() {
	if p.cfg == nil {
		return
	}
	current := p.cfg.GetCopyQuantity()
	next := SupportedQuantities[0]
	for i, q := range SupportedQuantities {
		if q == current {
			next = SupportedQuantities[(i+1)%len(SupportedQuantities)]
			break
		}
	}
	p.cfg.SetCopyQuantity(next)
	p.manager.RefreshTrayMenu()
	p.manager.NotifyUser("Copies", fmt.Sprintf("Sheet set to %d copies.", next))
}

// cacheDir is where the finished photo is kept between capture and export.
func cacheDir() string {
	return filepath.Join(config.GetWorkingDir(), "cache")
}

// cachePhoto writes the finished photo to the capture cache. Best effort; the
// in-memory copy is the source of truth for export.
func cachePhoto(photo image.Image) {
	dir := cacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("creating capture cache: %v", err)
		return
	}
	f, err := os.Create(filepath.Join(dir, "photo.png"))
	if err != nil {
		log.Printf("caching photo: %v", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, photo); err != nil {
		log.Printf("caching photo: %v", err)
	}
}

// ExportSheet renders the print sheet from the held photo and writes it in
// the requested format.
func (p *Plugin) ExportSheet(format string) {
	p.resultMu.Lock()
	res := p.lastResult
	p.resultMu.Unlock()
	if res == nil {
		p.manager.NotifyUser("Export", "Capture a photo first.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sheets, err := RenderSheets(ctx, res.Photo, p.cfg.GetCopyQuantity())
	if err != nil {
		p.manager.NotifyUser("Export", "The sheet could not be rendered.")
		log.Printf("rendering sheets: %v", err)
		return
	}

	dir := filepath.Join(config.GetWorkingDir(), "exports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		p.manager.NotifyUser("Export", "The export folder could not be created.")
		log.Printf("creating export dir: %v", err)
		return
	}

	name := fmt.Sprintf("passfoto_%s.%s", time.Now().Format("20060102_150405"), format)
	path := filepath.Join(dir, name)

	switch format {
	case "pdf":
		err = ExportPDF(sheets.Export, path)
	default:
		err = ExportJPEG(sheets.Export, path)
	}
	if err != nil {
		p.manager.NotifyUser("Export", "The sheet could not be saved.")
		log.Printf("exporting sheet: %v", err)
		return
	}
	p.manager.NotifyUser("Export", "Sheet saved to "+path)
}

// captureFailureMessage turns a pipeline error into user guidance. A remote
// service failure carries the upstream status and body through unchanged.
func captureFailureMessage(err error) string {
	var remote *RemoteError
	switch {
	case errors.As(err, &remote):
		return "Background removal failed: " + remote.Error()
	case errors.Is(err, ErrNoFace):
		return "No face detected. Face the camera and try again."
	case errors.Is(err, ErrMultipleFaces):
		return "Only one person may be in frame."
	case errors.Is(err, ErrFaceMisaligned):
		return "Adjust your position until framing is good, then capture."
	case errors.Is(err, ErrDetectionTransient):
		return "The camera feed hiccuped. Try again."
	default:
		return "The photo could not be captured."
	}
}
