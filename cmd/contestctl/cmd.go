package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/aimd54/design-contest/internal/config"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/internal/service/orchestrator"
	"github.com/aimd54/design-contest/pkg/logger"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db     *repository.DB
	cfg    *config.Config
	locker orchestrator.Locker // nil without redis
	log    *logger.Logger
	out    io.Writer
	now    func() time.Time
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  assign_submissions                       - rebuild every reviewer's vote assignments")
	fmt.Fprintln(cli.out, "  gen_leaderboard                          - recompute every submission's score")
	fmt.Fprintln(cli.out, "  assign_and_gen                           - run one competition clock tick")
	fmt.Fprintln(cli.out, "  update_timings -ss -se -vs -ve RFC3339   - set window bounds")
	fmt.Fprintln(cli.out, "  update_timings -auto -p MINUTES          - lay out consecutive windows starting now+p")
	fmt.Fprintln(cli.out, "  show_leaderboard [-show=false]           - publish or hide the leaderboard")
	fmt.Fprintln(cli.out, "  add_users -email EMAIL -name NAME        - add one user")
	fmt.Fprintln(cli.out, "  add_users -users FILE.csv                - import users whose status column is Complete")
	fmt.Fprintln(cli.out, "  make_admin -email EMAIL                  - grant admin to a user")
	fmt.Fprintln(cli.out, "  migrate up|down                          - apply or roll back one schema migration")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	timingsCmd := flag.NewFlagSet("update_timings", flag.ContinueOnError)
	timingsCmd.SetOutput(cli.out)
	timingsSS := timingsCmd.String("ss", "", "submission start (RFC3339)")
	timingsSE := timingsCmd.String("se", "", "submission end (RFC3339)")
	timingsVS := timingsCmd.String("vs", "", "voting start (RFC3339)")
	timingsVE := timingsCmd.String("ve", "", "voting end (RFC3339)")
	timingsAuto := timingsCmd.Bool("auto", false, "generate consecutive windows from -p")
	timingsPeriod := timingsCmd.Int("p", 0, "window length in minutes for -auto")

	showCmd := flag.NewFlagSet("show_leaderboard", flag.ContinueOnError)
	showCmd.SetOutput(cli.out)
	showValue := showCmd.Bool("show", true, "leaderboard visibility")

	addUsersCmd := flag.NewFlagSet("add_users", flag.ContinueOnError)
	addUsersCmd.SetOutput(cli.out)
	addUsersEmail := addUsersCmd.String("email", "", "email of a single user")
	addUsersName := addUsersCmd.String("name", "", "name of a single user")
	addUsersFile := addUsersCmd.String("users", "", "CSV export to import")

	makeAdminCmd := flag.NewFlagSet("make_admin", flag.ContinueOnError)
	makeAdminCmd.SetOutput(cli.out)
	makeAdminEmail := makeAdminCmd.String("email", "", "email of the user to promote")

	switch args[1] {
	case "assign_submissions":
		return cli.assignSubmissions()

	case "gen_leaderboard":
		return cli.genLeaderboard()

	case "assign_and_gen":
		return cli.assignAndGen()

	case "update_timings":
		if err := timingsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *timingsAuto {
			if *timingsPeriod <= 0 {
				timingsCmd.Usage()
				return errHelp
			}
			return cli.autoTimings(time.Duration(*timingsPeriod) * time.Minute)
		}
		if *timingsSS == "" && *timingsSE == "" && *timingsVS == "" && *timingsVE == "" {
			timingsCmd.Usage()
			return errHelp
		}
		return cli.updateTimings(*timingsSS, *timingsSE, *timingsVS, *timingsVE)

	case "show_leaderboard":
		if err := showCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.showLeaderboard(*showValue)

	case "add_users":
		if err := addUsersCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		switch {
		case *addUsersFile != "":
			return cli.importUsers(*addUsersFile)
		case *addUsersEmail != "" && *addUsersName != "":
			return cli.addUser(*addUsersName, *addUsersEmail)
		default:
			addUsersCmd.Usage()
			return errHelp
		}

	case "make_admin":
		if err := makeAdminCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *makeAdminEmail == "" {
			makeAdminCmd.Usage()
			return errHelp
		}
		return cli.makeAdmin(*makeAdminEmail)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2])

	default:
		cli.printUsage()
		return errHelp
	}
}
