package views

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/classnotes/internal/forms"
	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/rivo/tview"
)

// Field is one input of a FormView.
type Field struct {
	Label  string
	Value  string
	Secret bool
}

// Button is an extra form button, such as a link to another page.
type Button struct {
	Label    string
	Selected func()
}

// FormView is a titled input form with an error panel. One FormView is
// reconfigured for every create and edit dialog.
type FormView struct {
	*tview.Flex
	static
	theme    *ui.Theme
	form     *tview.Form
	errors   *tview.TextView
	name     string
	fields   []Field
	onSubmit func(values []string)
}

func NewFormView(theme *ui.Theme) *FormView {
	form := tview.NewForm()
	form.SetBackgroundColor(theme.BgColor)
	form.SetFieldBackgroundColor(tcell.ColorDarkSlateGray)
	form.SetFieldTextColor(tcell.ColorWhite)
	form.SetLabelColor(theme.FgColor)
	form.SetButtonBackgroundColor(theme.BorderColor)
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderColor)
	form.SetTitleColor(theme.TitleColor)

	errs := tview.NewTextView().SetDynamicColors(true)
	errs.SetBackgroundColor(theme.BgColor)
	errs.SetBorderPadding(0, 0, 2, 2)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errs, 4, 0, false)

	return &FormView{
		Flex:   flex,
		theme:  theme,
		form:   form,
		errors: errs,
	}
}

// Configure replaces the form content. onSubmit receives the field values
// in order; cancel runs on Esc and the Cancel button.
func (fv *FormView) Configure(name string, fields []Field, onSubmit func(values []string), cancel func(), extra ...Button) {
	fv.name = name
	fv.fields = fields
	fv.onSubmit = onSubmit
	fv.form.Clear(true)
	fv.errors.Clear()
	fv.form.SetTitle(" " + name + " ")
	for _, f := range fields {
		if f.Secret {
			fv.form.AddPasswordField(f.Label, f.Value, 40, '*', nil)
		} else {
			fv.form.AddInputField(f.Label, f.Value, 40, nil, nil)
		}
	}
	fv.form.AddButton("Save", fv.submit)
	for _, b := range extra {
		fv.form.AddButton(b.Label, b.Selected)
	}
	if cancel != nil {
		fv.form.AddButton("Cancel", cancel)
		fv.form.SetCancelFunc(cancel)
	}
	fv.form.SetFocus(0)
}

// Values returns the current field contents.
func (fv *FormView) Values() []string {
	values := make([]string, len(fv.fields))
	for i := range fv.fields {
		if in, ok := fv.form.GetFormItem(i).(*tview.InputField); ok {
			values[i] = in.GetText()
		}
	}
	return values
}

func (fv *FormView) submit() {
	fv.errors.Clear()
	if fv.onSubmit != nil {
		fv.onSubmit(fv.Values())
	}
}

// ShowError lists the per-field messages of a validation error, or the
// error text otherwise. nil clears the panel.
func (fv *FormView) ShowError(err error) {
	fv.errors.Clear()
	if err == nil {
		return
	}
	color := colorHex(fv.theme.FlashErrColor)
	fe := forms.FieldErrors(err)
	if fe == nil {
		_, _ = fmt.Fprintf(fv.errors, "[%s]%s[-]", color, tview.Escape(err.Error()))
		return
	}
	msgs := make([]string, 0, len(fe))
	for _, m := range fe {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	for _, m := range msgs {
		_, _ = fmt.Fprintf(fv.errors, "[%s]• %s[-]\n", color, tview.Escape(m))
	}
}

func (fv *FormView) Name() string { return fv.name }

func (fv *FormView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Press button"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func colorHex(c tcell.Color) string {
	return fmt.Sprintf("#%06x", c.Hex())
}
