package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/forms"
	"github.com/matheus3301/classnotes/internal/school"
	"github.com/matheus3301/classnotes/internal/stores"
	"github.com/matheus3301/classnotes/internal/tui/keys"
	"github.com/matheus3301/classnotes/internal/tui/model"
	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/matheus3301/classnotes/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Page keys.
const (
	pageLogin       = "login"
	pageRegister    = "register"
	pageGroups      = "groups"
	pageNotes       = "notes"
	pageChat        = "chat"
	pageShare       = "share"
	pageClasses     = "classes"
	pageClass       = "class"
	pageSubjects    = "subjects"
	pageSchoolLogin = "school-login"
	pageForm        = "form"
	pageConfirm     = "confirm"
	pageHelp        = "help"
)

// formPages receive every key; their widgets handle input themselves.
var formPages = map[string]bool{
	pageLogin:       true,
	pageRegister:    true,
	pageSchoolLogin: true,
	pageForm:        true,
	pageConfirm:     true,
}

// Options configures an App.
type Options struct {
	Session   string
	SchoolURL string
	Stores    *stores.Stores
	School    *school.Client
	Bus       *bus.Bus
	Logger    *zap.Logger
	// Persist saves or clears the doc-store credentials after sign-in,
	// sign-up and sign-out.
	Persist func() error
}

// App is the terminal UI shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	pages    *ui.Pages
	registry *keys.Registry
	vm       *model.ViewModel
	bus      *bus.Bus
	flash    *ui.FlashModel
	logger   *zap.Logger
	opts     Options

	root     *tview.Flex
	info     *ui.SessionInfo
	menu     *ui.Menu
	crumbs   *ui.Crumbs
	prompt   *ui.Prompt
	flashBar *ui.FlashBar
	status   *views.StatusBar

	authForm *views.FormView
	form     *views.FormView
	confirm  *views.Confirm
	groups   *views.GroupList
	notes    *views.NoteList
	chat     *views.ChatThread
	share    *views.ShareView
	classes  *views.ClassList
	class    *views.ClassDetail
	subjects *views.SubjectList
	help     *views.HelpView

	schoolIn bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp builds the UI over the given stores and school client.
func NewApp(opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Persist == nil {
		opts.Persist = func() error { return nil }
	}

	a := &App{
		app:      tview.NewApplication(),
		theme:    theme,
		pages:    ui.NewPages(),
		registry: keys.NewRegistry(),
		vm:       model.NewViewModel(opts.Stores, opts.School),
		bus:      opts.Bus,
		flash:    ui.NewFlashModel(),
		logger:   opts.Logger,
		opts:     opts,
		info:     ui.NewSessionInfo(theme),
		menu:     ui.NewMenu(theme),
		crumbs:   ui.NewCrumbs(theme),
		prompt:   ui.NewPrompt(theme),
		flashBar: ui.NewFlashBar(theme),
		status:   views.NewStatusBar(theme),
		authForm: views.NewFormView(theme),
		form:     views.NewFormView(theme),
		confirm:  views.NewConfirm(theme),
		groups:   views.NewGroupList(theme),
		notes:    views.NewNoteList(theme),
		share:    views.NewShareView(theme),
		classes:  views.NewClassList(theme),
		class:    views.NewClassDetail(theme),
		subjects: views.NewSubjectList(theme),
		help:     views.NewHelpView(theme),
		ctx:      ctx,
		cancel:   cancel,
	}
	a.chat = views.NewChatThread(theme, stores.NewChatFeed(opts.Stores.Chat), a.queue, a.reportErr)
	a.schoolIn = a.vm.LoggedIn()

	a.setupBindings()
	a.setupLayout()
	return a
}

func (a *App) queue(fn func()) {
	a.app.QueueUpdateDraw(fn)
}

// reportErr flashes err. Safe from any goroutine.
func (a *App) reportErr(err error) {
	a.logger.Warn("operation failed", zap.Error(err))
	a.flash.Err(err)
}

// run executes fn off the UI goroutine and then, on success, done on it.
func (a *App) run(fn func() error, done func()) {
	go func() {
		if err := fn(); err != nil {
			a.reportErr(err)
			return
		}
		if done != nil {
			a.queue(done)
		}
	}()
}

func rk(r rune, desc string, fn func()) *keys.Action {
	return &keys.Action{Key: tcell.KeyRune, Rune: r, Description: desc, Handler: fn}
}

func (a *App) setupBindings() {
	r := a.registry
	r.AddGlobal(rk(':', "Command", func() { a.activatePrompt(ui.PromptCommand) }))
	r.AddGlobal(rk('?', "Help", func() { a.pages.Push(pageHelp, a.help) }))
	r.AddGlobal(&keys.Action{Key: tcell.KeyRune, Rune: '1', Description: "Groups", Numeric: true, Handler: a.showGroups})
	r.AddGlobal(&keys.Action{Key: tcell.KeyRune, Rune: '2', Description: "Classes", Numeric: true, Handler: a.showClasses})
	r.AddGlobal(&keys.Action{Key: tcell.KeyRune, Rune: '3', Description: "Subjects", Numeric: true, Handler: a.showSubjects})
	r.AddGlobal(rk('q', "Quit", a.Stop))

	r.AddPage(pageGroups, &keys.Action{Key: tcell.KeyEnter, Label: "Enter", Description: "Notes", Handler: a.openNotes})
	r.AddPage(pageGroups, rk('c', "Chat", a.openChat))
	r.AddPage(pageGroups, rk('n', "New", a.newGroup))
	r.AddPage(pageGroups, rk('e', "Rename", a.renameGroup))
	r.AddPage(pageGroups, rk('d', "Delete", a.deleteGroup))
	r.AddPage(pageGroups, rk('s', "Share", a.shareGroup))
	r.AddPage(pageGroups, rk('r', "Refresh", a.fetchGroups))

	r.AddPage(pageNotes, rk('n', "New", a.newNote))
	r.AddPage(pageNotes, rk('e', "Edit", a.editNote))
	r.AddPage(pageNotes, rk('d', "Delete", a.deleteNote))
	r.AddPage(pageNotes, rk('/', "Filter day", func() { a.activatePrompt(ui.PromptDate) }))
	r.AddPage(pageNotes, rk('0', "Clear filter", func() { a.setNoteDay("") }))
	r.AddPage(pageNotes, rk('c', "Chat", func() { a.startChat(a.notes.Group()) }))
	r.AddPage(pageNotes, rk('r', "Refresh", func() { a.fetchNotes(a.notes.Group().ID) }))

	r.AddPage(pageChat, rk('i', "Compose", func() { a.app.SetFocus(a.chat.Composer()) }))

	r.AddPage(pageClasses, &keys.Action{Key: tcell.KeyEnter, Label: "Enter", Description: "Open", Handler: a.openClass})
	r.AddPage(pageClasses, rk('n', "New", func() { a.editClass(school.Class{}) }))
	r.AddPage(pageClasses, rk('e', "Edit", func() {
		if c, ok := a.classes.Selected(); ok {
			a.editClass(c)
		}
	}))
	r.AddPage(pageClasses, rk('d', "Delete", a.deleteClass))
	r.AddPage(pageClasses, rk('r', "Refresh", a.fetchClasses))

	r.AddPage(pageClass, &keys.Action{Key: tcell.KeyTab, Label: "Tab", Description: "Switch table", Handler: a.toggleClassFocus})
	r.AddPage(pageClass, rk('n', "New student", func() { a.editStudent(school.Student{}) }))
	r.AddPage(pageClass, rk('e', "Edit student", func() {
		if s, ok := a.class.SelectedStudent(); ok {
			a.editStudent(s)
		}
	}))
	r.AddPage(pageClass, rk('d', "Delete student", a.deleteStudent))
	r.AddPage(pageClass, rk('l', "Link subject", a.linkSubject))
	r.AddPage(pageClass, rk('u', "Unlink subject", a.unlinkSubject))

	r.AddPage(pageSubjects, rk('n', "New", func() { a.editSubject(school.Subject{}) }))
	r.AddPage(pageSubjects, rk('e', "Edit", func() {
		if s, ok := a.subjects.Selected(); ok {
			a.editSubject(s)
		}
	}))
	r.AddPage(pageSubjects, rk('d', "Delete", a.deleteSubject))
	r.AddPage(pageSubjects, rk('r', "Refresh", a.fetchSubjects))
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		AddItem(a.info, 0, 2, false).
		AddItem(a.menu, 0, 3, false).
		AddItem(ui.NewLogo(a.theme), 22, 0, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 6, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.status, 1, 0, false)

	a.pages.SetOnChange(func(names []string) {
		a.crumbs.Update(names)
		a.renderMenu()
		if c := a.pages.Current(); c != nil {
			a.app.SetFocus(c)
		}
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.closePrompt()
		switch mode {
		case ui.PromptCommand:
			a.execute(ParseCommand(text))
		case ui.PromptDate:
			a.setNoteDay(strings.TrimSpace(text))
		}
	})
	a.prompt.SetOnCancel(a.closePrompt)

	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.capture)
}

func (a *App) capture(ev *tcell.EventKey) *tcell.EventKey {
	if a.app.GetFocus() == a.prompt.InputField {
		return ev
	}
	key := a.pages.CurrentKey()
	_, typing := a.app.GetFocus().(*tview.InputField)

	if ev.Key() == tcell.KeyEscape {
		switch {
		case key == pageChat && typing:
			a.app.SetFocus(a.chat.Messages())
		case key == pageConfirm:
			a.back()
		case formPages[key]:
			return ev
		default:
			a.back()
		}
		return nil
	}
	if typing || formPages[key] {
		return ev
	}
	if a.registry.HandleEvent(key, ev) {
		return nil
	}
	return ev
}

func (a *App) back() {
	a.pages.Pop()
}

func (a *App) activatePrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.root.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) closePrompt() {
	a.root.ResizeItem(a.prompt, 0, 0)
	if c := a.pages.Current(); c != nil {
		a.app.SetFocus(c)
	}
}

func (a *App) execute(cmd Command) {
	switch cmd.Name {
	case "":
	case "groups":
		a.showGroups()
	case "classes":
		a.showClasses()
	case "subjects":
		a.showSubjects()
	case "help":
		a.pages.Push(pageHelp, a.help)
	case "quit":
		a.Stop()
	case "date":
		if a.pages.CurrentKey() != pageNotes {
			a.flash.Warn("Open a group's notes to filter by day")
			return
		}
		a.setNoteDay(cmd.Args)
	case "login":
		if email, password, ok := strings.Cut(cmd.Args, " "); ok {
			a.schoolLogin(forms.SchoolLogin{Email: email, Password: strings.TrimSpace(password)}, nil)
			return
		}
		a.showSchoolLogin(nil)
	case "logout":
		if err := a.vm.Logout(); err != nil {
			a.reportErr(err)
			return
		}
		a.schoolIn = false
		a.flash.Info("Logged out of the school API")
		switch a.pages.CurrentKey() {
		case pageClasses, pageClass, pageSubjects:
			a.showGroups()
		}
		a.renderHeader()
	case "signout":
		a.run(func() error {
			if err := a.vm.Stores.Auth.SignOut(a.ctx); err != nil {
				return err
			}
			return a.opts.Persist()
		}, nil)
	default:
		a.flash.Warn(fmt.Sprintf("Unknown command %q (try :help)", cmd.Name))
	}
}

// Run starts the event loop and blocks until the UI exits.
func (a *App) Run() error {
	events, unsubscribe := a.bus.Subscribe("", 64)
	defer unsubscribe()
	stopAuth := a.vm.Stores.Auth.Initialize(a.ctx)
	defer stopAuth()
	defer a.cancel()

	a.syncAuthPage()
	a.renderHeader()
	go a.watch(events)
	return a.app.Run()
}

func (a *App) watch(events <-chan bus.Event) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-a.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.queue(func() { a.handleEvent(ev) })
		case <-a.flash.Watch():
			a.queue(a.renderFlash)
		case <-ticker.C:
			a.queue(func() {
				a.renderFlash()
				a.renderStatus()
			})
		}
	}
}

func (a *App) handleEvent(ev bus.Event) {
	switch ev.Kind {
	case bus.KindStoreAuth:
		a.syncAuthPage()
	case bus.KindStoreGroups:
		a.renderGroups()
	case bus.KindStoreNotes:
		if ch, ok := ev.Payload.(stores.Change); ok && ch.GroupID == a.notes.Group().ID {
			a.renderNotes()
		}
	}
	a.renderHeader()
	a.renderStatus()
}

// syncAuthPage shows the login form when signed out and the groups when a
// user appears on an auth page.
func (a *App) syncAuthPage() {
	user := a.vm.Stores.Auth.User()
	key := a.pages.CurrentKey()
	switch {
	case user == nil && key != pageLogin && key != pageRegister:
		a.showLogin()
	case user != nil && (key == "" || key == pageLogin || key == pageRegister):
		a.showGroups()
	}
}

// Stop shuts the UI down.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

func (a *App) uid() string {
	if u := a.vm.Stores.Auth.User(); u != nil {
		return u.ID
	}
	return ""
}

func (a *App) renderMenu() {
	key := a.pages.CurrentKey()
	hints := a.registry.Hints(key)
	if c := a.pages.Current(); c != nil {
		hints = append(c.Hints(), hints...)
	}
	if formPages[key] {
		hints = a.pages.Current().Hints()
	}
	a.menu.Update(hints)
}

func (a *App) renderHeader() {
	data := ui.SessionData{
		Session:  a.opts.Session,
		State:    string(a.vm.Stores.Auth.State()),
		School:   a.opts.SchoolURL,
		LoggedIn: a.schoolIn,
		Groups:   len(a.vm.Stores.Groups.Groups()),
	}
	if u := a.vm.Stores.Auth.User(); u != nil {
		data.Username, data.Email = u.Username, u.Email
	}
	a.info.Update(data)
}

func (a *App) renderStatus() {
	a.status.Set(a.opts.Session, string(a.vm.Stores.Auth.State()), a.vm.Loading(), a.schoolIn)
}

func (a *App) renderFlash() {
	a.flashBar.Update(a.flash.Current())
}

// openForm pushes the shared dialog form. submit runs off the UI
// goroutine; on success the dialog closes and done runs.
func (a *App) openForm(title string, fields []views.Field, submit func(values []string) error, done func()) {
	a.openFormAt(pageForm, title, fields, submit, done)
}

func (a *App) openFormAt(key, title string, fields []views.Field, submit func(values []string) error, done func()) {
	a.form.Configure(title, fields, func(values []string) {
		go func() {
			err := submit(values)
			a.queue(func() {
				if err != nil {
					a.form.ShowError(err)
					return
				}
				if a.pages.CurrentKey() == key {
					a.back()
				}
				if done != nil {
					done()
				}
			})
		}()
	}, a.back)
	a.pages.Push(key, a.form)
}

// ask confirms a destructive action, then runs fn off the UI goroutine.
func (a *App) ask(question string, fn func() error, done func()) {
	a.confirm.Ask(question, func() { a.run(fn, done) }, a.back)
	a.pages.Push(pageConfirm, a.confirm)
}

// Auth pages.

func (a *App) showLogin() {
	a.authForm.Configure("Sign in", []views.Field{
		{Label: "Email"},
		{Label: "Password", Secret: true},
	}, func(v []string) {
		f := forms.Login{Email: v[0], Password: v[1]}
		if err := forms.Validate(&f); err != nil {
			a.authForm.ShowError(err)
			return
		}
		a.authenticate(func() error { return a.vm.Stores.Auth.SignIn(a.ctx, f.Email, f.Password) })
	}, nil, views.Button{Label: "Register", Selected: a.showRegister})
	a.pages.Reset(pageLogin, a.authForm)
}

func (a *App) showRegister() {
	a.authForm.Configure("Create account", []views.Field{
		{Label: "Username"},
		{Label: "Email"},
		{Label: "Password", Secret: true},
		{Label: "Repeat password", Secret: true},
	}, func(v []string) {
		f := forms.Register{Username: v[0], Email: v[1], Password: v[2], RepeatPassword: v[3]}
		if err := forms.Validate(&f); err != nil {
			a.authForm.ShowError(err)
			return
		}
		a.authenticate(func() error { return a.vm.Stores.Auth.SignUp(a.ctx, f.Email, f.Password, f.Username) })
	}, nil, views.Button{Label: "Back to sign in", Selected: a.showLogin})
	a.pages.Reset(pageRegister, a.authForm)
}

func (a *App) authenticate(op func() error) {
	go func() {
		err := op()
		if err == nil {
			err = a.opts.Persist()
		}
		a.queue(func() {
			if err != nil {
				a.authForm.ShowError(err)
				return
			}
			a.syncAuthPage()
		})
	}()
}

// Groups, notes and chat.

func (a *App) showGroups() {
	if a.vm.Stores.Auth.User() == nil {
		a.showLogin()
		return
	}
	a.renderGroups()
	a.pages.Reset(pageGroups, a.groups)
	a.fetchGroups()
}

func (a *App) fetchGroups() {
	a.run(func() error { return a.vm.Stores.Groups.FetchGroups(a.ctx) }, nil)
}

func (a *App) renderGroups() {
	a.groups.Update(a.vm.Stores.Groups.Groups(), a.uid())
}

func (a *App) newGroup() {
	a.openForm("New group", []views.Field{{Label: "Name"}}, func(v []string) error {
		f := forms.Group{Name: v[0]}
		if err := forms.Validate(&f); err != nil {
			return err
		}
		_, err := a.vm.Stores.Groups.CreateGroup(a.ctx, strings.TrimSpace(f.Name))
		return err
	}, nil)
}

func (a *App) renameGroup() {
	g, ok := a.groups.Selected()
	if !ok {
		return
	}
	a.openForm("Rename "+g.Name, []views.Field{{Label: "Name", Value: g.Name}}, func(v []string) error {
		f := forms.Group{Name: v[0]}
		if err := forms.Validate(&f); err != nil {
			return err
		}
		return a.vm.Stores.Groups.UpdateGroup(a.ctx, g.ID, strings.TrimSpace(f.Name))
	}, nil)
}

func (a *App) deleteGroup() {
	g, ok := a.groups.Selected()
	if !ok {
		return
	}
	a.ask(fmt.Sprintf("Delete group %q?", g.Name), func() error {
		return a.vm.Stores.Groups.DeleteGroup(a.ctx, g.ID)
	}, nil)
}

func (a *App) shareGroup() {
	if g, ok := a.groups.Selected(); ok {
		a.share.Show(g)
		a.pages.Push(pageShare, a.share)
	}
}

func (a *App) openNotes() {
	g, ok := a.groups.Selected()
	if !ok {
		return
	}
	a.notes.Update(g, a.vm.Notes(g.ID), a.vm.NoteDay())
	a.pages.Push(pageNotes, a.notes)
	a.fetchNotes(g.ID)
}

func (a *App) fetchNotes(groupID string) {
	a.run(func() error { return a.vm.Stores.Notes.FetchNotes(a.ctx, groupID) }, nil)
}

func (a *App) renderNotes() {
	g := a.notes.Group()
	a.notes.Update(g, a.vm.Notes(g.ID), a.vm.NoteDay())
}

func (a *App) setNoteDay(day string) {
	if err := a.vm.SetNoteDay(day); err != nil {
		a.flash.Warn("Invalid day " + strconv.Quote(day) + ", expected YYYY-MM-DD")
		return
	}
	a.renderNotes()
}

func (a *App) newNote() {
	g := a.notes.Group()
	a.openForm("New note in "+g.Name, []views.Field{{Label: "Title"}, {Label: "Content"}}, func(v []string) error {
		f := forms.Note{Title: v[0], Content: v[1]}
		if err := forms.Validate(&f); err != nil {
			return err
		}
		_, err := a.vm.Stores.Notes.CreateNote(a.ctx, g.ID, f.Title, f.Content)
		return err
	}, nil)
}

func (a *App) editNote() {
	n, ok := a.notes.Selected()
	if !ok {
		return
	}
	a.openForm("Edit note", []views.Field{{Label: "Title", Value: n.Title}, {Label: "Content", Value: n.Content}}, func(v []string) error {
		f := forms.Note{Title: v[0], Content: v[1]}
		if err := forms.Validate(&f); err != nil {
			return err
		}
		return a.vm.Stores.Notes.UpdateNote(a.ctx, n.GroupID, n.ID, f.Title, f.Content)
	}, nil)
}

func (a *App) deleteNote() {
	n, ok := a.notes.Selected()
	if !ok {
		return
	}
	a.ask(fmt.Sprintf("Delete note %q?", n.Title), func() error {
		return a.vm.Stores.Notes.DeleteNote(a.ctx, n.GroupID, n.ID)
	}, nil)
}

func (a *App) openChat() {
	if g, ok := a.groups.Selected(); ok {
		a.startChat(g)
	}
}

func (a *App) startChat(g stores.Group) {
	if g.ID == "" {
		return
	}
	a.chat.SetGroup(g, a.uid())
	a.pages.Push(pageChat, a.chat)
}

// School pages.

// requireSchool runs next once the school API login flag is set, asking
// for credentials first when needed.
func (a *App) requireSchool(next func()) {
	if a.schoolIn {
		next()
		return
	}
	a.showSchoolLogin(next)
}

func (a *App) showSchoolLogin(next func()) {
	a.openFormAt(pageSchoolLogin, "School API login", []views.Field{
		{Label: "Email"},
		{Label: "Password", Secret: true},
	}, func(v []string) error {
		return a.checkSchoolLogin(forms.SchoolLogin{Email: v[0], Password: v[1]})
	}, func() {
		a.schoolIn = true
		a.renderHeader()
		if next != nil {
			next()
		}
	})
}

func (a *App) checkSchoolLogin(f forms.SchoolLogin) error {
	ok, err := a.vm.Login(a.ctx, f)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("invalid email or password")
	}
	return nil
}

func (a *App) schoolLogin(f forms.SchoolLogin, next func()) {
	a.run(func() error { return a.checkSchoolLogin(f) }, func() {
		a.schoolIn = true
		a.flash.Info("Logged in to the school API")
		a.renderHeader()
		if next != nil {
			next()
		}
	})
}

func (a *App) showClasses() {
	a.requireSchool(func() {
		a.classes.Update(a.vm.Classes())
		a.pages.Reset(pageClasses, a.classes)
		a.fetchClasses()
	})
}

func (a *App) fetchClasses() {
	a.run(func() error { return a.vm.LoadClasses(a.ctx) }, a.renderSchool)
}

func (a *App) showSubjects() {
	a.requireSchool(func() {
		a.subjects.Update(a.vm.Subjects())
		a.pages.Reset(pageSubjects, a.subjects)
		a.fetchSubjects()
	})
}

func (a *App) fetchSubjects() {
	a.run(func() error { return a.vm.LoadSubjects(a.ctx) }, a.renderSchool)
}

func (a *App) renderSchool() {
	a.classes.Update(a.vm.Classes())
	a.subjects.Update(a.vm.Subjects())
	if c := a.vm.Class(); c != nil {
		a.class.Update(*c, a.vm.Students())
	} else if a.pages.CurrentKey() == pageClass {
		a.back()
		a.flash.Warn("The class no longer exists")
	}
}

func (a *App) openClass() {
	c, ok := a.classes.Selected()
	if !ok {
		return
	}
	a.class.Update(c, nil)
	a.pages.Push(pageClass, a.class)
	a.run(func() error { return a.vm.LoadClass(a.ctx, c.ID) }, a.renderSchool)
}

func (a *App) toggleClassFocus() {
	if a.app.GetFocus() == a.class.Students() {
		a.app.SetFocus(a.class.Subjects())
		return
	}
	a.app.SetFocus(a.class.Students())
}

func (a *App) editClass(c school.Class) {
	title := "New class"
	count := ""
	if c.ID != 0 {
		title = "Edit " + c.Name
		count = strconv.Itoa(c.StudentCount)
	}
	a.openForm(title, []views.Field{
		{Label: "Name", Value: c.Name},
		{Label: "Number of students", Value: count},
	}, func(v []string) error {
		return a.vm.SaveClass(a.ctx, c.ID, forms.Class{Name: v[0], StudentCount: v[1]})
	}, a.renderSchool)
}

func (a *App) deleteClass() {
	c, ok := a.classes.Selected()
	if !ok {
		return
	}
	a.ask(fmt.Sprintf("Delete class %q with its students?", c.Name), func() error {
		return a.vm.DeleteClass(a.ctx, c.ID)
	}, a.renderSchool)
}

func (a *App) editStudent(s school.Student) {
	classID := a.class.Class().ID
	title := "New student"
	if s.ID != 0 {
		title = "Edit " + s.FullName()
	}
	a.openForm(title, []views.Field{
		{Label: "Last name", Value: s.LastName},
		{Label: "First name", Value: s.FirstName},
		{Label: "Birth date (YYYY-MM-DD)", Value: s.BirthDate},
	}, func(v []string) error {
		return a.vm.SaveStudent(a.ctx, s.ID, classID, forms.Student{LastName: v[0], FirstName: v[1], BirthDate: v[2]})
	}, a.renderSchool)
}

func (a *App) deleteStudent() {
	s, ok := a.class.SelectedStudent()
	if !ok {
		return
	}
	classID := a.class.Class().ID
	a.ask(fmt.Sprintf("Delete student %s?", s.FullName()), func() error {
		return a.vm.DeleteStudent(a.ctx, s.ID, classID)
	}, a.renderSchool)
}

func (a *App) linkSubject() {
	classID := a.class.Class().ID
	a.openForm("Link subject", []views.Field{{Label: "Subject ID"}}, func(v []string) error {
		id, err := strconv.ParseInt(strings.TrimSpace(v[0]), 10, 64)
		if err != nil || id <= 0 {
			return forms.Errors{"matiere": "Subject ID must be a positive number"}
		}
		return a.vm.LinkSubject(a.ctx, classID, id)
	}, a.renderSchool)
}

func (a *App) unlinkSubject() {
	s, ok := a.class.SelectedSubject()
	if !ok {
		return
	}
	c := a.class.Class()
	a.ask(fmt.Sprintf("Remove %s from %s?", s.Title, c.Name), func() error {
		return a.vm.UnlinkSubject(a.ctx, c.ID, s.ID)
	}, a.renderSchool)
}

func (a *App) editSubject(s school.Subject) {
	title := "New subject"
	if s.ID != 0 {
		title = "Edit " + s.Title
	}
	a.openForm(title, []views.Field{
		{Label: "Title", Value: s.Title},
		{Label: "Description", Value: s.Description},
	}, func(v []string) error {
		return a.vm.SaveSubject(a.ctx, s.ID, forms.Subject{Title: v[0], Description: v[1]})
	}, a.renderSchool)
}

func (a *App) deleteSubject() {
	s, ok := a.subjects.Selected()
	if !ok {
		return
	}
	a.ask(fmt.Sprintf("Delete subject %q?", s.Title), func() error {
		return a.vm.DeleteSubject(a.ctx, s.ID)
	}, a.renderSchool)
}
