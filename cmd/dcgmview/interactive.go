package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	dcgm "github.com/Shreyas-G-nutanix/go-dcgm"
	"github.com/Shreyas-G-nutanix/go-dcgm/native"
	"github.com/Shreyas-G-nutanix/go-dcgm/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5A8F29")).
			Padding(0, 1)

	deviceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5A8F29"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectDevice modelState = iota
	stateInputFields
	stateShowValues
)

type deviceInfo struct {
	id   uint
	name string
	uuid string
}

type interactiveModel struct {
	err        error
	lib        native.Interface
	sess       *session.Session
	addr       string
	unixSocket bool
	persist    bool
	devices    []deviceInfo
	values     []dcgm.FieldValue
	fieldInput textinput.Model
	selected   int
	state      modelState
}

type loadedMsg struct {
	err     error
	sess    *session.Session
	devices []deviceInfo
}

type valuesMsg struct {
	err    error
	values []dcgm.FieldValue
}

func newInteractiveModel(lib native.Interface, addr string, unixSocket, persist bool) *interactiveModel {
	return &interactiveModel{
		lib:        lib,
		addr:       addr,
		unixSocket: unixSocket,
		persist:    persist,
		state:      stateSelectDevice,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.openSession
}

func (m *interactiveModel) openSession() tea.Msg {
	s, err := openSession(m.lib, m.addr, m.unixSocket, m.persist)
	if err != nil {
		return loadedMsg{err: err}
	}

	gpus, err := s.GetAllSupportedDevices()
	if err != nil {
		s.Close()
		return loadedMsg{err: err}
	}

	devices := make([]deviceInfo, 0, len(gpus))
	for _, gpu := range gpus {
		attrs, err := s.GetDeviceAttributes(gpu)
		if err != nil {
			s.Close()
			return loadedMsg{err: err}
		}
		devices = append(devices, deviceInfo{
			id:   gpu,
			name: attrs.Identifiers.DeviceName,
			uuid: attrs.Identifiers.UUID,
		})
	}

	return loadedMsg{sess: s, devices: devices}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInputFields && msg.String() == "q" {
				break
			}
			if m.sess != nil {
				m.sess.Close()
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectDevice && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectDevice && m.selected < len(m.devices)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectDevice:
				if len(m.devices) == 0 {
					break
				}
				m.prepareFieldInput()
				m.state = stateInputFields

			case stateInputFields:
				return m, m.watchAndRead

			case stateShowValues:
				m.state = stateSelectDevice
				m.values = nil
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputFields:
				m.state = stateSelectDevice
			case stateShowValues:
				m.state = stateSelectDevice
				m.values = nil
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sess = msg.sess
		m.devices = msg.devices

	case valuesMsg:
		m.values = msg.values
		m.err = msg.err
		m.state = stateShowValues
	}

	if m.state == stateInputFields {
		var cmd tea.Cmd
		m.fieldInput, cmd = m.fieldInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareFieldInput() {
	ti := textinput.New()
	ti.Placeholder = "150,155,203"
	ti.Prompt = "field ids: "
	ti.Width = 40
	ti.Focus()
	m.fieldInput = ti
}

// watchAndRead registers a throwaway watch on the selected GPU, forces
// one update cycle, reads the fields back, and tears the watch down
// again. This is one full monitoring round trip.
func (m *interactiveModel) watchAndRead() tea.Msg {
	fields, err := parseFieldIDs(m.fieldInput.Value())
	if err != nil {
		return valuesMsg{err: err}
	}
	device := m.devices[m.selected]

	group, err := m.sess.CreateGroup("dcgmview")
	if err != nil {
		return valuesMsg{err: err}
	}
	defer m.sess.DestroyGroup(group)

	if err := m.sess.AddEntityToGroup(group, dcgm.EntityGroupGPU, device.id); err != nil {
		return valuesMsg{err: err}
	}

	fieldGroup, err := m.sess.FieldGroupCreate("dcgmview", fields)
	if err != nil {
		return valuesMsg{err: err}
	}
	defer m.sess.FieldGroupDestroy(fieldGroup)

	if err := m.sess.WatchFields(fieldGroup, group, time.Second, time.Minute, 10); err != nil {
		return valuesMsg{err: err}
	}

	values, err := m.sess.EntityGetLatestValues(device.id, dcgm.EntityGroupGPU, fields)
	if err != nil {
		return valuesMsg{err: err}
	}
	return valuesMsg{values: values}
}

func parseFieldIDs(input string) ([]dcgm.FieldID, error) {
	var fields []dcgm.FieldID
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("bad field id %q: %w", part, err)
		}
		fields = append(fields, dcgm.FieldID(id))
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no field ids given")
	}
	return fields, nil
}

func formatValue(v dcgm.FieldValue) string {
	if err := v.Checked(); err != nil {
		return errorStyle.Render(err.Error())
	}
	switch v.FieldType {
	case dcgm.FieldTypeDouble:
		return fmt.Sprintf("%g", v.Float64)
	case dcgm.FieldTypeInt64, dcgm.FieldTypeTimestamp:
		return fmt.Sprintf("%d", v.Int64)
	case dcgm.FieldTypeString:
		return v.Str
	default:
		return fmt.Sprintf("<%c>", v.FieldType)
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowValues {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.sess == nil {
		return "Connecting to host engine..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("DCGM Viewer"))
	b.WriteString(" ")
	b.WriteString(m.sess.Mode().String())
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectDevice:
		if len(m.devices) == 0 {
			b.WriteString("No supported GPUs found.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a GPU to read fields from:\n\n")
		for i, d := range m.devices {
			line := fmt.Sprintf("GPU %d: %s %s", d.id,
				deviceStyle.Render(d.name), typeStyle.Render(d.uuid))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • q quit"))

	case stateInputFields:
		d := m.devices[m.selected]
		b.WriteString(fmt.Sprintf("Reading from %s\n\n", deviceStyle.Render(fmt.Sprintf("GPU %d", d.id))))
		b.WriteString(m.fieldInput.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("comma-separated field ids • enter read • esc back"))

	case stateShowValues:
		d := m.devices[m.selected]
		b.WriteString(fmt.Sprintf("Latest values of %s:\n\n", deviceStyle.Render(fmt.Sprintf("GPU %d", d.id))))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			for _, v := range m.values {
				b.WriteString(fmt.Sprintf("  %s %s\n",
					typeStyle.Render(fmt.Sprintf("field %d:", v.FieldID)),
					resultStyle.Render(formatValue(v))))
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(lib native.Interface, addr string, unixSocket, persist bool) error {
	p := tea.NewProgram(newInteractiveModel(lib, addr, unixSocket, persist), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
