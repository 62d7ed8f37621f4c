package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/audit"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/bridge"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/config"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/media"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/peer"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/proctor"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/session"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/signalclient"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/signaling"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/ui"
)

const joinTimeout = 30 * time.Second

func loadConfig() (*config.Config, error) {
	return config.Load(config.Options{
		Domain:      flagDomain,
		STUNServer:  flagSTUN,
		TURNServer:  flagTURN,
		TURNUser:    flagTURNUser,
		TURNPass:    flagTURNPass,
		ForceRelay:  flagRelay,
		DisplayName: flagName,
		Insecure:    flagInsecure,
	})
}

// createRoom reserves a fresh room code through the session bridge and puts
// it on the clipboard for sharing.
func createRoom(kind signaling.RoomKind) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stop := ui.RunConnectionSpinner("Reserving room code...")
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
	defer cancel()

	br := bridge.NewClient(cfg.BridgeURL)
	var sess bridge.Session
	if kind == signaling.RoomInterview {
		sess, err = br.CreateInterview(ctx)
	} else {
		sess, err = br.CreateMeeting(ctx)
	}
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	stop()

	if err := clipboard.WriteAll(sess.Code); err == nil {
		ui.PrintInfo("Code copied to clipboard")
	}
	fmt.Println(ui.RoomCodeBox(kind.String(), sess.Code, sess.SessionID))

	return joinRoom(cfg, kind, sess.Code)
}

// joinExisting validates the code through the bridge and enters the room.
func joinExisting(kind signaling.RoomKind, code string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stop := ui.RunConnectionSpinner("Checking room code...")
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
	defer cancel()

	br := bridge.NewClient(cfg.BridgeURL)
	var sess bridge.Session
	if kind == signaling.RoomInterview {
		sess, err = br.JoinInterview(ctx, code)
	} else {
		sess, err = br.JoinMeeting(ctx, code)
	}
	if errors.Is(err, bridge.ErrCodeNotFound) {
		return fmt.Errorf("no such room: %s", code)
	}
	if err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	stop()

	return joinRoom(cfg, kind, sess.Code)
}

// joinRoom runs the whole call: signaling connection, session setup, TUI,
// and the history entry afterwards.
func joinRoom(cfg *config.Config, kind signaling.RoomKind, code string) error {
	stop := ui.RunConnectionSpinner("Connecting to server...")
	defer stop()

	sc := signalclient.NewClient(cfg.WebSocketURL)
	if err := sc.Connect(); err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}
	stop()

	tracks := media.NewTrackSet(media.SampleCapture{})
	if !tracks.CameraAvailable() {
		ui.PrintWarning("Camera unavailable, joining without video")
	}
	if !tracks.MicAvailable() {
		ui.PrintWarning("Microphone unavailable, joining muted")
	}

	sess := session.New(sc, tracks, peer.NewTransportFactory(cfg), kind)

	joinCtx, cancel := context.WithTimeout(context.Background(), joinTimeout)
	defer cancel()
	if err := sess.Join(joinCtx, code, cfg.DisplayName); err != nil {
		sc.Close()
		if errors.Is(err, session.ErrRoomFull) {
			return fmt.Errorf("room %s is full", code)
		}
		return fmt.Errorf("join %s: %w", code, err)
	}

	// The candidate side of an interview watches its own camera and flags
	// dark-camera episodes to the room.
	callCtx, stopCall := context.WithCancel(context.Background())
	defer stopCall()
	if kind == signaling.RoomInterview && isCandidate(sess) {
		src := proctor.NewCameraSource(tracks)
		mon := proctor.NewMonitor(src, sess.Report)
		go src.Run(callCtx)
		go mon.Run(callCtx)
	}

	model := ui.NewRoomModel(sess, kind)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		sess.Leave()
		return fmt.Errorf("run call ui: %w", err)
	}
	sess.Leave()

	duration, anomalies := sess.Stats()
	entry := audit.Entry{
		Kind:      kind.String(),
		Room:      sess.Room(),
		Name:      sess.SelfName(),
		Peers:     len(sess.Members()),
		Duration:  duration.Seconds(),
		Anomalies: anomalies,
		Status:    "completed",
	}
	if kind == signaling.RoomInterview {
		entry.Role = signaling.RoleInterviewer
		if isCandidate(sess) {
			entry.Role = signaling.RoleCandidate
		}
	}
	if err := audit.Write(entry); err != nil {
		ui.PrintWarning(fmt.Sprintf("could not record call history: %v", err))
	}

	ui.PrintSuccessf("Left room %s after %s", sess.Room(), duration.Round(time.Second))
	return nil
}

// isCandidate reports whether this member joined an interview second.
func isCandidate(s *session.Session) bool {
	for _, m := range s.Members() {
		if m.ID != s.SelfID() && m.Role == signaling.RoleInterviewer {
			return true
		}
	}
	return false
}
