package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"progallerydl/internal/config"
)

// AppSettings holds the user configurable values of the terminal UI session.
type AppSettings struct {
	OutputFolder string
	MaxSlides    int
	Album        bool
	LogLevel     string
}

var defaultSettings = AppSettings{
	OutputFolder: "./gallery",
	MaxSlides:    200,
	Album:        false,
	LogLevel:     "info",
}

// uiModel is the state of the terminal UI.
type uiModel struct {
	choices        []string
	cursor         int
	selected       bool
	url            string
	settings       AppSettings
	settingsMode   bool
	settingCursor  int
	settingOptions []string
	editingValue   bool
	editValue      string
}

func initialModel() uiModel {
	return uiModel{
		choices: []string{
			"Download Gallery",
			"Settings",
			"Quit",
		},
		settings: defaultSettings,
		settingOptions: []string{
			"Output Folder",
			"Max Slides",
			"Build PDF Album",
			"Log Level",
			"Back to Main Menu",
		},
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A49FA5"))

	settingLabelStyle = lipgloss.NewStyle().
				Width(20).
				Foreground(lipgloss.Color("#7D56F4"))

	settingValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))
)

func (m uiModel) Init() tea.Cmd {
	return nil
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		// q only quits from the main menu, elsewhere it is a character
		if !m.selected && !m.settingsMode {
			return m, tea.Quit
		}
	case "up", "down", "k", "j":
		// navigation keys move the cursor unless a text field is active,
		// in which case k and j fall through as characters
		typing := m.selected || (m.settingsMode && m.editingValue)
		if keyMsg.Type != tea.KeyRunes || !typing {
			down := keyMsg.String() == "down" || keyMsg.String() == "j"
			if !m.selected && !m.settingsMode {
				if down && m.cursor < len(m.choices)-1 {
					m.cursor++
				} else if !down && m.cursor > 0 {
					m.cursor--
				}
			} else if m.settingsMode && !m.editingValue {
				if down && m.settingCursor < len(m.settingOptions)-1 {
					m.settingCursor++
				} else if !down && m.settingCursor > 0 {
					m.settingCursor--
				}
			}
			return m, nil
		}
	case "enter":
		return m.handleEnter()
	case "esc":
		if m.settingsMode && m.editingValue {
			m.editingValue = false
		} else if m.settingsMode {
			m.settingsMode = false
		} else if m.selected {
			m.selected = false
			m.url = ""
		}
		return m, nil
	case "backspace":
		if m.selected && len(m.url) > 0 {
			m.url = m.url[:len(m.url)-1]
		} else if m.settingsMode && m.editingValue && len(m.editValue) > 0 {
			m.editValue = m.editValue[:len(m.editValue)-1]
		}
		return m, nil
	}

	if keyMsg.Type == tea.KeyRunes {
		if m.selected {
			m.url += string(keyMsg.Runes)
		} else if m.settingsMode && m.editingValue {
			m.editValue += string(keyMsg.Runes)
		}
	}

	return m, nil
}

func (m uiModel) handleEnter() (tea.Model, tea.Cmd) {
	if m.settingsMode {
		if m.editingValue {
			switch m.settingCursor {
			case 0: // output folder
				if m.editValue != "" {
					m.settings.OutputFolder = m.editValue
				}
			case 1: // max slides
				if val, err := strconv.Atoi(m.editValue); err == nil && val > 0 {
					m.settings.MaxSlides = val
				}
			case 3: // log level
				if m.editValue != "" {
					m.settings.LogLevel = m.editValue
				}
			}
			m.editingValue = false
			return m, nil
		}

		switch m.settingCursor {
		case 0:
			m.editValue = m.settings.OutputFolder
			m.editingValue = true
		case 1:
			m.editValue = fmt.Sprintf("%d", m.settings.MaxSlides)
			m.editingValue = true
		case 2: // album toggle
			m.settings.Album = !m.settings.Album
		case 3:
			m.editValue = m.settings.LogLevel
			m.editingValue = true
		case 4: // back
			m.settingsMode = false
		}
		return m, nil
	}

	if !m.selected {
		switch m.cursor {
		case 0: // download gallery
			m.selected = true
		case 1: // settings
			m.settingsMode = true
			m.settingCursor = 0
		case 2: // quit
			return m, tea.Quit
		}
		return m, nil
	}

	// URL entry screen
	if m.url != "" {
		return m, tea.Quit
	}
	return m, nil
}

func (m uiModel) View() string {
	if m.settingsMode {
		return m.settingsView()
	}

	if !m.selected {
		s := titleStyle.Render("Pro Gallery Downloader") + "\n\n"
		s += "Select an option:\n\n"

		for i, choice := range m.choices {
			cursor := " "
			if m.cursor == i {
				cursor = ">"
				choice = selectedStyle.Render(choice)
			}
			s += fmt.Sprintf("%s %s\n", cursor, choice)
		}

		s += "\n" + infoStyle.Render("Press q to quit, arrow keys to navigate, enter to select")
		return s
	}

	s := titleStyle.Render("Pro Gallery Downloader - New Session") + "\n\n"
	s += fmt.Sprintf("Output folder: %s\n", m.settings.OutputFolder)
	if m.settings.Album {
		s += "Album: will be built after the download\n"
	}
	s += "\nEnter the URL of the page hosting the gallery:\n"
	s += fmt.Sprintf("> %s\n", m.url)
	s += "\nPress Enter to start, Esc to go back\n"
	return s
}

func (m uiModel) settingsView() string {
	s := titleStyle.Render("Pro Gallery Downloader - Settings") + "\n\n"

	for i, option := range m.settingOptions {
		cursor := " "
		if m.settingCursor == i {
			cursor = ">"
			option = selectedStyle.Render(option)
		}

		if i == len(m.settingOptions)-1 {
			s += fmt.Sprintf("%s %s\n", cursor, option)
			continue
		}

		s += fmt.Sprintf("%s %s", cursor, settingLabelStyle.Render(option))

		if m.editingValue && m.settingCursor == i {
			s += fmt.Sprintf(": %s_\n", m.editValue)
			continue
		}

		switch i {
		case 0:
			s += fmt.Sprintf(": %s\n", settingValueStyle.Render(m.settings.OutputFolder))
		case 1:
			s += fmt.Sprintf(": %s\n", settingValueStyle.Render(fmt.Sprintf("%d", m.settings.MaxSlides)))
		case 2:
			value := "No"
			if m.settings.Album {
				value = "Yes"
			}
			s += fmt.Sprintf(": %s\n", settingValueStyle.Render(value))
		case 3:
			s += fmt.Sprintf(": %s\n", settingValueStyle.Render(m.settings.LogLevel))
		}
	}

	s += "\n" + infoStyle.Render("Press Enter to edit a setting, Esc to go back")
	return s
}

// RunTerminalUI drives the interactive menu and then runs the selected
// download with the chosen settings.
func RunTerminalUI() {
	p := tea.NewProgram(initialModel())
	m, err := p.Run()
	if err != nil {
		fmt.Printf("Error running UI: %v\n", err)
		os.Exit(1)
	}

	finalModel := m.(uiModel)
	if !finalModel.selected || finalModel.url == "" {
		return
	}

	cfg, err := config.Load("")
	if err != nil {
		color.Red("ERROR: %v", err)
		os.Exit(1)
	}
	cfg.Gallery.URL = finalModel.url
	cfg.Output.Directory = finalModel.settings.OutputFolder
	cfg.Gallery.MaxSlides = finalModel.settings.MaxSlides
	cfg.Output.Album = finalModel.settings.Album
	cfg.Logging.Level = finalModel.settings.LogLevel

	if err := cfg.Validate(); err != nil {
		color.Red("ERROR: %v", err)
		os.Exit(1)
	}

	info := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("%s Opening gallery at %s\n", info("INFO:"), cfg.Gallery.URL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	if err := downloadGallery(ctx, cfg); err != nil {
		color.Red("ERROR: %v", err)
		os.Exit(1)
	}

	success := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Session completed in %s\n", success("SUCCESS:"), time.Since(start).Round(time.Second))
}
