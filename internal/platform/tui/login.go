package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/gem-arcade/internal/membership"
)

// Authenticator checks and creates accounts. *membership.Service satisfies it.
type Authenticator interface {
	Login(username, password string) (membership.Account, error)
	Register(username, password string) (membership.Account, error)
}

type loginMode int

const (
	modeLogin loginMode = iota
	modeRegister
)

// authResultMsg carries the outcome of a login or registration attempt.
type authResultMsg struct {
	account membership.Account
	err     error
}

var loginErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

// LoginModel prompts for credentials before the menu.
type LoginModel struct {
	auth     Authenticator
	mode     loginMode
	username textinput.Model
	password textinput.Model
	width    int
	busy     bool
	errText  string
	account  *membership.Account
	guest    bool
	quitting bool
}

// NewLoginModel creates a prompt with the username prefilled. register
// selects the registration form for names that have no account yet.
func NewLoginModel(auth Authenticator, username string, register bool, width int) LoginModel {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 32
	user.Width = 32
	user.SetValue(membership.NormalizeUsername(username))

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 72
	pass.Width = 32
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'

	m := LoginModel{
		auth:     auth,
		username: user,
		password: pass,
		width:    width,
	}
	if register {
		m.mode = modeRegister
	}
	if user.Value() == "" {
		m.username.Focus()
	} else {
		m.password.Focus()
	}
	return m
}

// Init starts the cursor blinking.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the prompt.
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = describeAuthError(msg.err)
			m.password.SetValue("")
			return m, nil
		}
		account := msg.account
		m.account = &account
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			m.guest = true
			return m, nil
		case "ctrl+n":
			if m.mode == modeLogin {
				m.mode = modeRegister
			} else {
				m.mode = modeLogin
			}
			m.errText = ""
			return m, nil
		case "tab", "shift+tab", "up", "down":
			return m, m.toggleFocus()
		case "enter":
			if m.username.Focused() {
				return m, m.toggleFocus()
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	if m.username.Focused() {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *LoginModel) toggleFocus() tea.Cmd {
	if m.username.Focused() {
		m.username.Blur()
		return m.password.Focus()
	}
	m.password.Blur()
	return m.username.Focus()
}

func (m LoginModel) submit() (tea.Model, tea.Cmd) {
	username := m.username.Value()
	password := m.password.Value()
	mode := m.mode
	auth := m.auth

	m.busy = true
	m.errText = ""
	return m, func() tea.Msg {
		var (
			account membership.Account
			err     error
		)
		if mode == modeRegister {
			account, err = auth.Register(username, password)
		} else {
			account, err = auth.Login(username, password)
		}
		return authResultMsg{account: account, err: err}
	}
}

func describeAuthError(err error) string {
	switch {
	case errors.Is(err, membership.ErrInvalidCredentials):
		return "Wrong username or password."
	case errors.Is(err, membership.ErrUserExists):
		return "That username is taken. Press ctrl+n to log in instead."
	case errors.Is(err, membership.ErrInvalidUsername):
		return "Usernames are 3-32 characters: a-z, 0-9, _ or -."
	case errors.Is(err, membership.ErrWeakPassword):
		return "Password is too short."
	default:
		return "Something went wrong, try again."
	}
}

// View renders the prompt.
func (m LoginModel) View() string {
	if m.quitting {
		return ""
	}

	title := "L O G   I N"
	hint := "ctrl+n: create an account"
	if m.mode == modeRegister {
		title = "R E G I S T E R"
		hint = "ctrl+n: log in to an existing account"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render(title), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.username.View(), m.width))
	b.WriteString("\n")
	b.WriteString(centerText(m.password.View(), m.width))
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(centerText("Checking...", m.width))
	case m.errText != "":
		b.WriteString(centerText(loginErrorStyle.Render(m.errText), m.width))
	}
	b.WriteString("\n\n")
	b.WriteString(centerText("Enter: Submit  |  Tab: Switch field  |  "+hint, m.width))
	b.WriteString("\n")
	b.WriteString(centerText("Esc: Continue as guest  |  Ctrl+C: Quit", m.width))
	b.WriteString("\n")
	return b.String()
}

// Account returns the authenticated account once login succeeds.
func (m LoginModel) Account() *membership.Account {
	return m.account
}

// IsGuest returns true if the user skipped the prompt.
func (m LoginModel) IsGuest() bool {
	return m.guest
}

// IsQuitting returns true if the user asked to leave.
func (m LoginModel) IsQuitting() bool {
	return m.quitting
}
