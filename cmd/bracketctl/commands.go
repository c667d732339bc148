package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Dosada05/tournament-engine/db"
	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/progression"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())
}

func generateCmd() *cobra.Command {
	var (
		format    string
		teamsFile string
		seeded    bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the first batch of matches for a list of teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := models.ParseFormat(format)
			if err != nil {
				return err
			}
			teams, err := readTeams(teamsFile)
			if err != nil {
				return err
			}
			tour := newTournament("generated", f, teams, seeded)

			u, err := progression.NewController(logger).Start(tour)
			if err != nil {
				return err
			}
			if u.Warning != nil {
				return u.Warning
			}
			return printJSON(cmd.OutOrStdout(), u.Tournament.Matches)
		},
	}
	cmd.Flags().StringVar(&format, "format", "single_elimination", "Tournament format")
	cmd.Flags().StringVar(&teamsFile, "teams", "", "JSON file with an array of teams ({\"name\", \"ranking\", \"category\"})")
	cmd.Flags().BoolVar(&seeded, "seeded", false, "Seed the first stage by ranking")
	_ = cmd.MarkFlagRequired("teams")
	return cmd
}

func simulateCmd() *cobra.Command {
	var (
		format string
		count  int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a whole tournament with random rallies",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := models.ParseFormat(format)
			if err != nil {
				return err
			}
			teams := make([]*models.Team, count)
			for i := range teams {
				teams[i] = &models.Team{ID: fmt.Sprintf("team-%02d", i+1), Name: fmt.Sprintf("Team %d", i+1), Ranking: float64(count - i)}
			}
			tour := newTournament("simulation", f, teams, true)

			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			done, err := simulate(progression.NewController(logger), tour, rng)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), done)
		},
	}
	cmd.Flags().StringVar(&format, "format", "single_elimination", "Tournament format")
	cmd.Flags().IntVar(&count, "teams", 8, "Number of teams")
	cmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "Random seed for the rallies")
	return cmd
}

func migrateCmd() *cobra.Command {
	var (
		dsn     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return errors.New("DATABASE_URL is not set and --database-url was not given")
			}
			conn, err := db.Connect(dsn, timeout, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := db.Migrate(ctx, conn); err != nil {
				return err
			}
			version, err := db.MigrationVersion(ctx, conn)
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "version", version)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "database-url", "", "Postgres DSN (defaults to DATABASE_URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Connection timeout")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		role    string
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with JWT_SECRET_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET_KEY")
			if secret == "" {
				return errors.New("JWT_SECRET_KEY is not set")
			}
			if role != middleware.RoleOrganizer && role != middleware.RoleScorekeeper {
				return fmt.Errorf("role must be %s or %s", middleware.RoleOrganizer, middleware.RoleScorekeeper)
			}
			tok, err := middleware.IssueToken([]byte(secret), subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", middleware.RoleScorekeeper, "organizer or scorekeeper")
	cmd.Flags().StringVar(&subject, "subject", "bracketctl", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	return cmd
}

func readTeams(path string) ([]*models.Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read teams file: %w", err)
	}
	var teams []*models.Team
	if err := json.Unmarshal(data, &teams); err != nil {
		return nil, fmt.Errorf("failed to parse teams file: %w", err)
	}
	for i, t := range teams {
		if t.ID == "" {
			t.ID = fmt.Sprintf("team-%02d", i+1)
		}
	}
	return teams, nil
}

func newTournament(name string, format models.Format, teams []*models.Team, seeded bool) *models.Tournament {
	now := time.Now().UTC()
	t := &models.Tournament{
		ID:           name,
		Name:         name,
		Format:       format,
		CurrentStage: models.StageRegistration,
		Teams:        teams,
		Scoring:      models.DefaultScoringSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if seeded {
		t.Seeding = models.SeedingConfig{
			UseSeeding: true,
			StagesToSeed: []models.Stage{
				models.StageInProgress, models.StageGroupStage, models.StageInitialRound,
			},
		}
	}
	return t
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, t *models.Tournament) error {
	champion := t.TeamByID(t.ChampionID)
	if champion == nil {
		return fmt.Errorf("tournament %s finished without a champion", t.ID)
	}
	fmt.Fprintf(w, "Champion: %s\n\n", champion.Name)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTEAM\tW\tL\tSETS\tPOINTS")
	for i, row := range finalStandings(t) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d-%d\t%d-%d\n", i+1, row.TeamName, row.Wins, row.Losses,
			row.SetsWon, row.SetsLost, row.PointsFor, row.PointsAgainst)
	}
	return tw.Flush()
}
