package gui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/logging"
	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/reslist"
	"github.com/rescale/rescale-browse/internal/sources"
)

// API is what the browser needs from the Rescale client.
type API interface {
	sources.FolderLister
	sources.JobLister
	GetRootFolders(ctx context.Context) (*models.RootFolders, error)
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
}

// BreadcrumbEntry represents a folder in the navigation path
type BreadcrumbEntry struct {
	ID   string
	Name string
}

const (
	rootLibrary = "My Library"
	rootJobs    = "My Jobs"
)

// listView is one resource kind: its engine, its widget and its search setter.
type listView struct {
	kind      string
	ctrl      *reslist.Controller
	list      *ResourceList
	setSearch func(string)
}

func (v *listView) reload(mode reslist.ReloadMode) {
	v.list.Run(func(ctx context.Context) error {
		return v.ctrl.Reload(ctx, mode)
	})
}

// Browser is the main window content: a library/jobs toggle, folder breadcrumb,
// layout and search controls, the active list and a status bar.
type Browser struct {
	ctx    context.Context
	cfg    *config.Config
	client API
	bus    *events.EventBus
	logger *logging.Logger
	window fyne.Window

	folders *sources.FolderSource
	jobs    *sources.JobSource
	files   *listView
	jobList *listView

	mu         sync.RWMutex
	current    *listView
	breadcrumb []BreadcrumbEntry

	rootToggle    *widget.RadioGroup
	breadcrumbBar *fyne.Container
	layoutSelect  *widget.Select
	searchEntry   *widget.Entry
	newFolderBtn  *widget.Button
	statusBar     *StatusBar
}

// NewBrowser builds both list engines. Nothing is fetched until Start.
func NewBrowser(ctx context.Context, cfg *config.Config, client API, bus *events.EventBus, logger *logging.Logger, window fyne.Window) (*Browser, error) {
	b := &Browser{
		ctx:     ctx,
		cfg:     cfg,
		client:  client,
		bus:     bus,
		logger:  logger,
		window:  window,
		folders: sources.NewFolderSource(client, ""),
		jobs:    sources.NewJobSource(client),
	}

	var err error
	b.files, err = b.newListView("files", b.folders.FetchPage, sources.FileStrategies(cfg.GridColumns), sources.FileColumns(), b.folders.SetSearch)
	if err != nil {
		return nil, err
	}
	b.jobList, err = b.newListView("jobs", b.jobs.FetchPage, sources.JobStrategies(cfg.GridColumns), sources.JobColumns(), b.jobs.SetSearch)
	if err != nil {
		return nil, err
	}
	b.files.list.OnOpen = b.openItem
	b.current = b.files
	return b, nil
}

func (b *Browser) newListView(kind string, fetch reslist.FetchPageFunc, strategies []reslist.RowStrategy, cols []reslist.Column, setSearch func(string)) (*listView, error) {
	list := NewResourceList(b.ctx, b.logger)
	host := reslist.NewBusHost(b.bus, kind)

	layout := b.cfg.DefaultLayout
	if layout == "" {
		layout = sources.StrategyTable
	}
	ctrl, err := reslist.New(reslist.Config{
		ResourceKind:    kind,
		Strategies:      strategies,
		InitialStrategy: layout,
		DefaultSort:     sources.SortFromConfig(b.cfg, cols),
		FetchPage:       fetch,
		Host:            host,
		Logger:          b.logger,
		OnScrollToRow:   list.ScrollToRow,
		OnChange:        list.EngineChanged,
		OnPage:          host.PageFetched,
		LoadConcurrency: constants.LoadConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("%s list: %w", kind, err)
	}
	host.Bind(ctrl)

	var table *reslist.TableStrategy
	for _, s := range strategies {
		if t, ok := s.(*reslist.TableStrategy); ok {
			table = t
			break
		}
	}
	list.Bind(ctrl, table)

	return &listView{kind: kind, ctrl: ctrl, list: list, setSearch: setSearch}, nil
}

// Start begins event handling and resolves the root folders.
func (b *Browser) Start() {
	go b.watchEvents()
	go b.initialize()
}

func (b *Browser) initialize() {
	b.statusBar.SetProgress("Connecting...")
	roots, err := b.client.GetRootFolders(b.ctx)
	if err != nil {
		b.logger.Errorf(err, "failed to get root folders")
		b.statusBar.SetError("Error: " + err.Error())
		return
	}
	b.statusBar.SetInfo("Ready")
	fyne.Do(func() {
		b.navigate([]BreadcrumbEntry{{ID: roots.MyLibrary, Name: rootLibrary}})
	})
}

// Build creates the window content.
func (b *Browser) Build() fyne.CanvasObject {
	b.statusBar = NewStatusBar()

	b.rootToggle = widget.NewRadioGroup([]string{rootLibrary, rootJobs}, b.onRootChanged)
	b.rootToggle.Horizontal = true
	b.rootToggle.SetSelected(rootLibrary)

	b.breadcrumbBar = container.NewHBox()
	upBtn := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), b.goUp)

	b.layoutSelect = widget.NewSelect([]string{sources.StrategyTable, sources.StrategyGrid}, b.onLayoutChanged)
	b.layoutSelect.SetSelected(b.current.ctrl.ActiveStrategy().Name())

	b.searchEntry = widget.NewEntry()
	b.searchEntry.SetPlaceHolder("Search...")
	b.searchEntry.OnSubmitted = func(text string) {
		b.view().ctrl.CommitSearch(strings.TrimSpace(text))
	}
	searchBox := container.New(&fixedWidthLayout{width: 180}, b.searchEntry)

	b.newFolderBtn = NewPrimaryButtonWithIcon("New folder", theme.FolderNewIcon(), func() {
		b.files.ctrl.RequestCreate()
	})
	refreshBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		b.view().reload(reslist.ReloadClear)
	})
	selectAllBtn := widget.NewButton("Select all", func() {
		b.statusBar.SetProgress("Loading every item...")
		b.view().list.SelectAll()
	})
	clearBtn := widget.NewButton("Clear", func() {
		b.view().list.DeselectAll()
	})

	navBar := container.NewBorder(nil, nil,
		container.NewHBox(HorizontalSpacer(4), upBtn, b.rootToggle, HorizontalSpacer(8)),
		container.NewHBox(refreshBtn, HorizontalSpacer(4)),
		container.NewHScroll(b.breadcrumbBar),
	)
	toolBar := container.NewBorder(nil, nil,
		container.NewHBox(HorizontalSpacer(4), b.layoutSelect, b.newFolderBtn),
		container.NewHBox(selectAllBtn, clearBtn, searchBox, HorizontalSpacer(4)),
		nil,
	)

	b.jobList.list.Hide()
	lists := container.NewStack(b.files.list, b.jobList.list)

	return container.NewBorder(
		container.NewVBox(navBar, toolBar, widget.NewSeparator()),
		b.statusBar,
		nil, nil,
		lists,
	)
}

func (b *Browser) view() *listView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

func (b *Browser) viewFor(kind string) *listView {
	if kind == b.jobList.kind {
		return b.jobList
	}
	return b.files
}

func (b *Browser) onRootChanged(selected string) {
	next := b.files
	if selected == rootJobs {
		next = b.jobList
	}
	b.mu.Lock()
	prev := b.current
	b.current = next
	b.mu.Unlock()
	if b.layoutSelect == nil || prev == next {
		return
	}

	prev.list.Hide()
	next.list.Show()
	if next == b.files {
		b.newFolderBtn.Enable()
		b.breadcrumbBar.Show()
	} else {
		b.newFolderBtn.Disable()
		b.breadcrumbBar.Hide()
	}
	b.layoutSelect.SetSelected(next.ctrl.ActiveStrategy().Name())
	sel, _ := next.ctrl.Selection()
	b.statusBar.SetSelection(sel.Count())
}

func (b *Browser) onLayoutChanged(name string) {
	v := b.view()
	if v.ctrl.ActiveStrategy().Name() == name {
		return
	}
	if err := v.ctrl.SetStrategy(name); err != nil {
		b.logger.Warn().Err(err).Str("layout", name).Msg("cannot switch layout")
		return
	}
	v.list.Run(v.ctrl.LoadVisible)
}

func (b *Browser) openItem(it reslist.Item) {
	fi, ok := it.(*sources.FileItem)
	if !ok || !fi.Entry.IsFolder() || fi.Entry.Folder == nil {
		return
	}
	b.mu.RLock()
	path := append([]BreadcrumbEntry(nil), b.breadcrumb...)
	b.mu.RUnlock()
	b.navigate(append(path, BreadcrumbEntry{ID: fi.ID(), Name: fi.Entry.Folder.Name}))
}

func (b *Browser) goUp() {
	b.mu.RLock()
	path := b.breadcrumb
	b.mu.RUnlock()
	if len(path) > 1 {
		b.navigate(path[:len(path)-1])
	}
}

// navigate makes the last entry of path the listed folder. UI thread only.
func (b *Browser) navigate(path []BreadcrumbEntry) {
	if len(path) == 0 {
		return
	}
	b.mu.Lock()
	b.breadcrumb = path
	b.mu.Unlock()

	b.folders.SetFolder(path[len(path)-1].ID)
	b.renderBreadcrumb(path)
	b.files.reload(reslist.ReloadNewID)
}

func (b *Browser) renderBreadcrumb(path []BreadcrumbEntry) {
	objs := make([]fyne.CanvasObject, 0, 2*len(path))
	for i, entry := range path {
		if i > 0 {
			objs = append(objs, widget.NewLabel("/"))
		}
		prefix := path[:i+1]
		btn := widget.NewButton(entry.Name, func() {
			b.navigate(append([]BreadcrumbEntry(nil), prefix...))
		})
		btn.Importance = widget.LowImportance
		objs = append(objs, btn)
	}
	b.breadcrumbBar.Objects = objs
	b.breadcrumbBar.Refresh()
}

func (b *Browser) watchEvents() {
	ch := b.bus.SubscribeAll()

	for {
		select {
		case <-b.ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			b.handleEvent(ev)
		}
	}
}

func (b *Browser) handleEvent(ev events.Event) {
	switch e := ev.(type) {
	case *events.SelectionEvent:
		if e.ResourceKind == b.view().kind {
			b.statusBar.SetSelection(e.Count)
		}
	case *events.CreateEvent:
		fyne.Do(b.promptNewFolder)
	case *events.SearchEvent:
		v := b.viewFor(e.ResourceKind)
		v.setSearch(e.Text)
		v.reload(reslist.ReloadNewID)
	case *events.PageEvent:
		if e.ResourceKind != b.view().kind {
			return
		}
		if e.Error != nil {
			b.statusBar.SetError(fmt.Sprintf("Loading %s failed: %v", e.ResourceKind, e.Error))
			return
		}
		v := b.viewFor(e.ResourceKind)
		b.statusBar.SetInfo(fmt.Sprintf("%d of %d %s loaded", v.ctrl.LoadedCount(), e.TotalCount, e.ResourceKind))
	case *events.LogEvent:
		if e.Level == events.WarnLevel {
			b.statusBar.SetWarning(e.Message)
		}
	}
}

func (b *Browser) promptNewFolder() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Folder name")
	dialog.ShowForm("New folder", "Create", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(ok bool) {
			name := strings.TrimSpace(entry.Text)
			if !ok || name == "" {
				return
			}
			parent := b.folders.FolderID()
			go b.createFolder(name, parent)
		}, b.window)
}

func (b *Browser) createFolder(name, parent string) {
	id, err := b.client.CreateFolder(b.ctx, name, parent)
	if err != nil {
		b.logger.Errorf(err, "failed to create folder %q", name)
		fyne.Do(func() {
			dialog.ShowError(err, b.window)
		})
		return
	}
	b.logger.Info().Str("id", id).Str("name", name).Msg("folder created")
	b.files.reload(reslist.ReloadClear)
}
