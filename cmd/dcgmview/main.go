package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	dcgm "github.com/Shreyas-G-nutanix/go-dcgm"
	"github.com/Shreyas-G-nutanix/go-dcgm/native"
	"github.com/Shreyas-G-nutanix/go-dcgm/session"
)

func main() {
	var (
		libPath     = flag.String("lib", native.DefaultLibraryPath, "Path to the DCGM shared library")
		addr        = flag.String("addr", "", "Host engine address (host:port or socket path); empty starts an embedded engine")
		unixSocket  = flag.Bool("unix", false, "Treat -addr as a unix domain socket path")
		persist     = flag.Bool("persist", false, "Keep watches alive in the host engine after disconnect")
		topology    = flag.Bool("topology", false, "Print the PCIe/NVLink topology of every supported GPU")
		nvlink      = flag.Bool("nvlink", false, "Print per-lane NVLink states")
		entities    = flag.Uint("entities", 0, "List entity ids for the given entity group (1=GPU, 3=SWITCH, ...)")
		verbose     = flag.Bool("v", false, "Log library calls to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		native.SetLogger(logger)
	}

	lib, err := native.Load(*libPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(lib, *addr, *unixSocket, *persist); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(lib, *addr, *unixSocket, *persist, *topology, *nvlink, dcgm.EntityGroup(*entities)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5A8F29")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

func openSession(lib native.Interface, addr string, unixSocket, persist bool) (*session.Session, error) {
	if addr == "" {
		return session.New(lib, dcgm.ModeEmbedded, nil)
	}
	return session.New(lib, dcgm.ModeStandalone, []string{
		addr,
		fmt.Sprintf("%t", unixSocket),
		fmt.Sprintf("%t", persist),
	})
}

func run(lib native.Interface, addr string, unixSocket, persist, topology, nvlink bool, entityGroup dcgm.EntityGroup) error {
	s, err := openSession(lib, addr, unixSocket, persist)
	if err != nil {
		return err
	}
	defer s.Close()

	if entityGroup != dcgm.EntityGroupNone {
		ids, err := s.GetEntityGroupEntities(entityGroup)
		if err != nil {
			return err
		}
		fmt.Println(headerStyle.Render(entityGroup.String() + " entities"))
		for _, id := range ids {
			fmt.Printf("  %s %d\n", labelStyle.Render(entityGroup.String()), id)
		}
		return nil
	}

	gpus, err := s.GetAllSupportedDevices()
	if err != nil {
		return err
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("%d supported GPUs (%s mode)", len(gpus), s.Mode())))

	for _, gpu := range gpus {
		attrs, err := s.GetDeviceAttributes(gpu)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s %d: %s\n", labelStyle.Render("GPU"), gpu, attrs.Identifiers.DeviceName)
		fmt.Printf("  %s %s\n", labelStyle.Render("UUID  "), attrs.Identifiers.UUID)
		fmt.Printf("  %s %s\n", labelStyle.Render("PCI   "), attrs.Identifiers.PCIBusID)
		fmt.Printf("  %s %s\n", labelStyle.Render("Driver"), attrs.Identifiers.DriverVersion)

		if topology {
			printTopology(s, gpu)
		}
	}

	if nvlink {
		return printNvLink(s)
	}
	return nil
}

func printTopology(s *session.Session, gpu uint) {
	links, err := s.GetDeviceTopology(gpu)
	if err != nil {
		fmt.Printf("  %s\n", warnStyle.Render("topology: "+err.Error()))
		return
	}
	if len(links) == 0 {
		fmt.Printf("  %s\n", labelStyle.Render("topology: not supported"))
		return
	}
	for _, link := range links {
		fmt.Printf("  %s GPU %d (%s): %s / %s\n",
			labelStyle.Render("peer"), link.GPU, link.BusID,
			link.Path.PCIe(), link.Path.NVLink())
	}
}

func printNvLink(s *session.Session) error {
	statuses, err := s.GetNvLinkLinkStatus()
	if err != nil {
		return err
	}

	// Group lanes by entity so the listing reads top down.
	sort.SliceStable(statuses, func(i, j int) bool {
		a, b := statuses[i], statuses[j]
		if a.ParentType != b.ParentType {
			return a.ParentType < b.ParentType
		}
		if a.ParentID != b.ParentID {
			return a.ParentID < b.ParentID
		}
		return a.Index < b.Index
	})

	fmt.Printf("\n%s\n", headerStyle.Render("NVLink lanes"))
	for _, st := range statuses {
		if st.State == dcgm.NvLinkStateNotSupported {
			continue
		}
		fmt.Printf("  %s %d lane %d: %s\n",
			labelStyle.Render(st.ParentType.String()), st.ParentID, st.Index, st.State)
	}
	return nil
}
