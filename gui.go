package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/LiMingML/ToolProject/heatmap"
	"go.uber.org/zap"
)

// modeButtonLabels are the captions of the six visualization buttons.
var modeButtonLabels = map[heatmap.Mode]string{
	heatmap.ModeSingle:            "Single Heatmap",
	heatmap.ModeSingleRollingDiff: "Single + Rolling (Diff Units)",
	heatmap.ModeSingleRollingSame: "Single + Rolling (Same Units)",
	heatmap.ModeWhole:             "Whole + Region",
	heatmap.ModeWholeRollingDiff:  "Whole + Rolling (Diff Units)",
	heatmap.ModeWholeRollingSame:  "Whole + Rolling (Same Units)",
}

// heatmapWindow is the configuration editor. Its callbacks only build a
// request and hand it to the composer.
type heatmapWindow struct {
	app        fyne.App
	win        fyne.Window
	configPath string
	log        *zap.Logger
	composer   *heatmap.Composer

	editor     *widget.Entry
	status     *widget.Label
	vizButtons []*widget.Button
}

func runGUI(configPath string, log *zap.Logger) error {
	// We supply an ID (hopefully unique) because we may need to use the preferences API
	myApp := app.NewWithID("com.github.limingml.toolproject")
	w := myApp.NewWindow("Heatmap Visualization Tool")
	w.Resize(fyne.Size{Height: 600, Width: 800})

	hw := &heatmapWindow{
		app:        myApp,
		win:        w,
		configPath: configPath,
		log:        log,
		composer:   heatmap.NewComposer(log),
	}
	w.SetContent(hw.build())
	hw.loadConfig()

	watcher, err := watchConfig(configPath, log, func() {
		fyne.Do(hw.reloadFromDisk)
	})
	if err != nil {
		log.Warn("configuration file will not be watched", zap.Error(err))
	} else {
		defer func() { _ = watcher.Close() }()
	}

	w.ShowAndRun()
	return nil
}

func (hw *heatmapWindow) build() fyne.CanvasObject {
	hw.editor = widget.NewMultiLineEntry()
	hw.editor.SetPlaceHolder("Edit JSON configuration here...")
	hw.editor.TextStyle = fyne.TextStyle{Monospace: true}
	hw.status = widget.NewLabel("Ready")

	fileRow := container.NewHBox(
		widget.NewButton("Load Config", hw.loadConfig),
		widget.NewButton("Save Config", func() { _, _ = hw.saveConfig() }),
		widget.NewButton("Browse Data File", hw.browseDataFile),
	)

	var rows []fyne.CanvasObject
	var row []fyne.CanvasObject
	for _, mode := range heatmap.Modes() {
		b := widget.NewButton(modeButtonLabels[mode], func() { hw.runVisualization(mode) })
		hw.vizButtons = append(hw.vizButtons, b)
		row = append(row, b)
		if len(row) == 3 {
			rows = append(rows, container.NewGridWithColumns(3, row...))
			row = nil
		}
	}

	top := widget.NewLabel("Configuration:")
	bottom := container.NewVBox(append(append([]fyne.CanvasObject{fileRow}, rows...), hw.status)...)
	return container.NewBorder(top, bottom, nil, nil, hw.editor)
}

func (hw *heatmapWindow) setStatus(format string, args ...interface{}) {
	hw.status.SetText(fmt.Sprintf(format, args...))
}

func (hw *heatmapWindow) showError(err error) {
	hw.log.Warn("gui action failed", zap.Error(err))
	dialog.ShowError(err, hw.win)
}

// loadConfig shows the configuration file, writing the defaults first when
// there is none.
func (hw *heatmapWindow) loadConfig() {
	data, err := os.ReadFile(hw.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		if err := SaveConfigTable(hw.configPath, defaultConfigTable()); err != nil {
			hw.showError(err)
			hw.setStatus("Error loading configuration")
			return
		}
		data, err = os.ReadFile(hw.configPath)
	}
	if err != nil {
		hw.showError(&ConfigError{Path: hw.configPath, Err: err})
		hw.setStatus("Error loading configuration")
		return
	}
	if _, _, err := ParseConfig(data, hw.configPath); err != nil {
		hw.showError(err)
		hw.setStatus("Error loading configuration")
		return
	}
	hw.editor.SetText(string(data))
	hw.setStatus("Configuration loaded successfully")
}

// reloadFromDisk picks up edits made outside the GUI.
func (hw *heatmapWindow) reloadFromDisk() {
	data, err := os.ReadFile(hw.configPath)
	if err != nil || strings.TrimSpace(string(data)) == strings.TrimSpace(hw.editor.Text) {
		return
	}
	hw.loadConfig()
	hw.setStatus("Configuration reloaded from %s", hw.configPath)
}

// saveConfig validates the editor text and writes it back as indented JSON.
func (hw *heatmapWindow) saveConfig() (Config, error) {
	cfg, table, err := ParseConfig([]byte(hw.editor.Text), hw.configPath)
	if err != nil {
		hw.showError(err)
		hw.setStatus("Error saving configuration")
		return Config{}, err
	}
	if err := SaveConfigTable(hw.configPath, table); err != nil {
		hw.showError(err)
		hw.setStatus("Error saving configuration")
		return Config{}, err
	}
	if data, err := os.ReadFile(hw.configPath); err == nil {
		hw.editor.SetText(string(data))
	}
	hw.setStatus("Configuration saved successfully")
	return cfg, nil
}

func (hw *heatmapWindow) browseDataFile() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			hw.showError(err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()

		_, table, err := ParseConfig([]byte(hw.editor.Text), hw.configPath)
		if err != nil {
			hw.showError(err)
			return
		}
		table["filepath"] = path
		if err := SaveConfigTable(hw.configPath, table); err != nil {
			hw.showError(err)
			return
		}
		hw.loadConfig()
		hw.setStatus("Selected file: %s", path)
	}, hw.win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".txt", ".csv", ".tsv", ".dat"}))
	if wd, err := os.Getwd(); err == nil {
		if lister, err := storage.ListerForURI(storage.NewFileURI(wd)); err == nil {
			d.SetLocation(lister)
		}
	}
	d.Show()
}

func (hw *heatmapWindow) setBusy(busy bool) {
	for _, b := range hw.vizButtons {
		if busy {
			b.Disable()
		} else {
			b.Enable()
		}
	}
}

// runVisualization saves the configuration and renders mode in the background.
// The buttons stay disabled until the run finishes.
func (hw *heatmapWindow) runVisualization(mode heatmap.Mode) {
	cfg, err := hw.saveConfig()
	if err != nil {
		return
	}
	req, err := cfg.Request()
	if err != nil {
		hw.showError(err)
		return
	}

	hw.setBusy(true)
	hw.setStatus("Generating %s...", modeButtonLabels[mode])
	go func() {
		out, err := hw.composer.Run(mode, req)
		fyne.Do(func() {
			hw.setBusy(false)
			if err != nil {
				hw.showError(err)
				hw.setStatus("Error generating %s", modeButtonLabels[mode])
				return
			}
			hw.setStatus("Generated %s: %s", modeButtonLabels[mode], out)
			hw.showFigure(out, modeButtonLabels[mode])
		})
	}()
}

func (hw *heatmapWindow) showFigure(path, title string) {
	img := canvas.NewImageFromFile(path)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(900, 600))

	w := hw.app.NewWindow(title + " - " + filepath.Base(path))
	w.SetContent(container.NewStack(img))
	w.Resize(fyne.NewSize(1000, 700))
	w.Show()
}
