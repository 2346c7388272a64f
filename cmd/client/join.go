package main

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dkeye/Mesh/internal/adapters/rtc"
	"github.com/dkeye/Mesh/internal/config"
	"github.com/dkeye/Mesh/internal/domain"
	"github.com/dkeye/Mesh/internal/media"
	"github.com/dkeye/Mesh/internal/peer"
	"github.com/dkeye/Mesh/internal/signaling"
)

var (
	flagServer string
	flagRoom   string
	flagName   string
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a room and hold media sessions with every member",
	RunE:  runJoin,
}

func init() {
	joinCmd.Flags().StringVar(&flagServer, "server", "", "signaling server URL (overrides config)")
	joinCmd.Flags().StringVar(&flagRoom, "room", "", "room to join")
	joinCmd.Flags().StringVar(&flagName, "name", "", "username")
	_ = joinCmd.MarkFlagRequired("room")
	_ = joinCmd.MarkFlagRequired("name")
}

func runJoin(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	serverURL := cfg.Client.ServerURL
	if flagServer != "" {
		serverURL = flagServer
	}

	sig, err := signaling.Dial(serverURL)
	if err != nil {
		return err
	}
	defer sig.Close()

	client := peer.NewClient(
		peer.Config{
			Username:           flagName,
			Room:               domain.RoomName(flagRoom),
			RTC:                rtcConfig(cfg.Client.ICEServers),
			NegotiationTimeout: cfg.Client.NegotiationTimeout,
		},
		sig,
		media.StaticCapture{},
		rtc.New,
		peer.Callbacks{
			OnPeerTrack: func(remote string, track *webrtc.TrackRemote) {
				log.Info().Str("remote", remote).Str("kind", track.Kind().String()).Msg("remote track up")
			},
			OnPeerClosed: func(remote, reason string) {
				log.Info().Str("remote", remote).Str("reason", reason).Msg("peer gone")
			},
			OnChat: func(from, text string) {
				log.Info().Str("from", from).Str("text", text).Msg("chat")
			},
			OnReaction: func(from, emoji string) {
				log.Info().Str("from", from).Str("emoji", emoji).Msg("reaction")
			},
			OnRaise: func(from string, raised bool) {
				log.Info().Str("from", from).Bool("raised", raised).Msg("hand")
			},
		},
	)

	if err := client.Join(ctx); err != nil {
		return err
	}

	go readCommands(ctx, client)

	err = client.Run(ctx, sig.Incoming())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readCommands drives the client from stdin: /share, /unshare, /raise,
// /lower, /react <emoji>, /leave; anything else is chat.
func readCommands(ctx context.Context, client *peer.Client) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		var err error
		switch {
		case line == "":
			continue
		case line == "/share":
			err = client.StartScreenShare(ctx)
		case line == "/unshare":
			err = client.StopScreenShare()
		case line == "/raise":
			err = client.SetRaised(true)
		case line == "/lower":
			err = client.SetRaised(false)
		case strings.HasPrefix(line, "/react "):
			err = client.SendReaction(strings.TrimPrefix(line, "/react "))
		case line == "/leave":
			err = client.Leave()
		default:
			err = client.SendChat(line)
		}
		if err != nil {
			log.Warn().Err(err).Str("cmd", line).Msg("command failed")
		}
	}
}

func rtcConfig(servers []config.ICEServer) webrtc.Configuration {
	out := webrtc.Configuration{}
	for _, s := range servers {
		out.ICEServers = append(out.ICEServers, webrtc.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	return out
}
