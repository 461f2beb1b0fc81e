// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"platescan/internal/app"
	"platescan/internal/archive"
	"platescan/internal/hole"
	"platescan/internal/render"
	"platescan/internal/sector"
	"platescan/internal/version"
	"platescan/ui/panels"
	"platescan/ui/plateview"
	"platescan/ui/prefs"
)

// viewRefreshInterval throttles plate repaints during a running pass.
const viewRefreshInterval = 150 * time.Millisecond

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	prefs   *prefs.Prefs

	panorama    *plateview.PlateView
	focused     *plateview.PlateView
	sectorPanel *panels.SectorPanel
	statusBar   *widget.Label

	mu          sync.Mutex
	lastRepaint time.Time
	store       *archive.Store
}

// New creates a new main window.
func New(fyneApp fyne.App, session *app.Session, appPrefs *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("PlateScan")

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
		prefs:   appPrefs,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.restoreLastTable()

	win.Resize(fyne.NewSize(1280, 860))
	return mw
}

// setupUI creates the main layout: panorama on the left, focused view and
// sector stats on the right.
func (mw *MainWindow) setupUI() {
	mw.panorama = plateview.New(plateview.ModePanorama)
	mw.focused = plateview.New(plateview.ModeFocused)
	mw.sectorPanel = panels.NewSectorPanel(mw.session)
	mw.statusBar = widget.NewLabel("Ready")

	// Clicking a hole in the panorama focuses its sector.
	mw.panorama.OnHoleTapped = func(h hole.Hole) {
		sec, err := mw.session.Index().SectorOf(h.ID)
		if err != nil {
			return
		}
		if err := mw.session.SwitchFocus(sec); err != nil {
			log.Printf("Switch focus: %v", err)
			return
		}
		mw.statusBar.SetText(fmt.Sprintf("Hole %s (%s) — focused %s", h.ID, h.Status, sec))
	}

	right := container.NewVSplit(mw.focused, container.NewVScroll(mw.sectorPanel.Container()))
	right.SetOffset(0.45)

	split := container.NewHSplit(mw.panorama, right)
	split.SetOffset(0.62)

	mw.SetContent(container.NewBorder(nil, mw.statusBar, nil, nil, split))
}

func (mw *MainWindow) setupMenus() {
	openTable := fyne.NewMenuItem("Open Hole Table…", mw.openHoleTableDialog)

	focusItems := make([]*fyne.MenuItem, 0, sector.SectorCount)
	for _, sec := range sector.All() {
		s := sec
		focusItems = append(focusItems, fyne.NewMenuItem("Focus "+s.String(), func() {
			if err := mw.session.SwitchFocus(s); err != nil {
				log.Printf("Switch focus: %v", err)
			}
		}))
	}

	about := fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("PlateScan",
			fmt.Sprintf("PlateScan %s\nBuilt %s (%s)", version.Version, version.BuildTime, version.GitCommit),
			mw.Window)
	})

	mw.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File", openTable),
		fyne.NewMenu("View", focusItems...),
		fyne.NewMenu("Help", about),
	))
}

func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventPlateLoaded, func(data interface{}) {
		mw.refreshViews()
		mw.statusBar.SetText(fmt.Sprintf("Loaded %v — %d holes", data, len(mw.session.AllHoleIDs())))
	})
	mw.session.On(app.EventFocusChanged, func(interface{}) {
		mw.refreshViews()
	})
	mw.session.On(app.EventStatusChanged, func(interface{}) {
		mw.throttledRefresh()
	})
	mw.session.On(app.EventPassFinished, func(interface{}) {
		mw.refreshViews()
		mw.statusBar.SetText("Detection pass finished")
	})

	mw.SetOnClosed(func() {
		if err := mw.prefs.SaveIfChanged(); err != nil {
			log.Printf("Save preferences: %v", err)
		}
		if mw.store != nil {
			mw.store.Close()
		}
	})
}

// refreshViews rebuilds the render scene from session snapshots and
// repaints both plate views.
func (mw *MainWindow) refreshViews() {
	scene := render.Scene{
		Holes:      mw.session.Holes(),
		Centroid:   mw.session.Centroid(),
		Aggregates: mw.session.Aggregates(),
		Focus:      mw.session.Focus(),
	}
	mw.panorama.SetScene(scene)
	mw.focused.SetScene(scene)
}

func (mw *MainWindow) throttledRefresh() {
	mw.mu.Lock()
	if time.Since(mw.lastRepaint) < viewRefreshInterval {
		mw.mu.Unlock()
		return
	}
	mw.lastRepaint = time.Now()
	mw.mu.Unlock()
	mw.refreshViews()
}

func (mw *MainWindow) openHoleTableDialog() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		mw.OpenHoleTable(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	fd.Show()
}

// OpenHoleTable loads a hole table and attaches an inspection archive
// stored alongside it.
func (mw *MainWindow) OpenHoleTable(path string) {
	if err := mw.session.LoadTableFile(path); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.prefs.Set(prefs.KeyLastTable, path)

	if mw.store != nil {
		mw.store.Close()
		mw.store = nil
	}
	store, err := archive.Open(path + ".inspection.db")
	if err != nil {
		// The session still works without an archive; inspection history
		// just is not journaled.
		log.Printf("Open archive: %v", err)
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.store = store
	mw.session.AttachArchive(store)
}

func (mw *MainWindow) restoreLastTable() {
	path := mw.prefs.String(prefs.KeyLastTable)
	if path == "" {
		return
	}
	if err := mw.session.LoadTableFile(path); err != nil {
		log.Printf("Restore last hole table %s: %v", path, err)
		return
	}
	store, err := archive.Open(path + ".inspection.db")
	if err != nil {
		log.Printf("Open archive: %v", err)
		return
	}
	mw.store = store
	mw.session.AttachArchive(store)
}
