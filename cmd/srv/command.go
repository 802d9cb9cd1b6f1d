package main

import "github.com/urfave/cli/v2"

// loadApp creates the command line app, every command shares the config flag.
func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "petquest"
	app.Usage = "Pet Quest game engine"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path of the toml config file",
			EnvVars: []string{"PETQUEST_CONFIG"},
		},
	}
	app.Before = s.loadConfig
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serves wallet login, message execution and queries.`,
		},
		{
			Action:      s.startDispatcher,
			Name:        "dispatcher",
			Usage:       "Start the ledger dispatcher",
			Category:    "Worker",
			Description: `Delivers recorded ledger transactions to the token contracts and tracks their receipts.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database",
			Category:    "Admin",
			Description: `Creates or updates every table of the engine.`,
		},
		{
			Action:   s.startInstantiate,
			Name:     "instantiate",
			Usage:    "Instantiate the game",
			Category: "Admin",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "admin", Usage: "Admin address, defaults to game.admin"},
				&cli.IntFlag{Name: "max-stats", Usage: "Upper bound of every stat, defaults to game.max_stats"},
				&cli.StringFlag{Name: "entropy", Usage: "Seed entropy, defaults to game.entropy"},
			},
			Description: `Creates the game configuration. It fails if the game is already instantiated.`,
		},
		{
			Name:     "ledger",
			Usage:    "Operate the local ledger",
			Category: "Admin",
			Subcommands: []*cli.Command{
				{
					Action: s.startLedgerFund,
					Name:   "fund",
					Usage:  "Mint LOOT to an address and approve the engine to spend it",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "address", Required: true},
						&cli.Uint64Flag{Name: "amount", Required: true},
					},
				},
				{
					Action: s.startLedgerBalance,
					Name:   "balance",
					Usage:  "Print the LOOT balance and the pets of an address",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "address", Required: true},
					},
				},
			},
		},
	}

	s.app = app
}
