package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/lattice-pricer/src/cmd/lattice/run"
	"github.com/jiaming2012/lattice-pricer/src/eventmodels"
	"github.com/jiaming2012/lattice-pricer/src/utils"
)

var config *utils.Config

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Prices European options on a recombining binomial lattice",
	Long: `Prices European call and put options with a Cox-Ross-Rubinstein binomial lattice.
Contracts can be priced one at a time from flags, in bulk from a CSV or YAML file,
or over HTTP. Configuration is read from the environment and an optional .env.development file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envDir, err := cmd.Flags().GetString("env-dir")
		if err != nil {
			return err
		}

		config, err = run.Init(envDir)
		return err
	},
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price a single contract",
	Run: func(cmd *cobra.Command, args []string) {
		req, err := contractFromFlags(cmd)
		if err != nil {
			log.Fatalf("error reading contract flags: %v", err)
		}

		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			log.Fatalf("error getting verbose flag: %v", err)
		}

		if err := run.Price(cmd.Context(), cmd.OutOrStdout(), config, run.PriceArgs{Request: req, Verbose: verbose}); err != nil {
			log.Fatalf("error running command: %v", err)
		}
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Price every contract in a CSV or YAML file",
	Run: func(cmd *cobra.Command, args []string) {
		inPath, err := cmd.Flags().GetString("in")
		if err != nil {
			log.Fatalf("error getting in flag: %v", err)
		}

		outPath, err := cmd.Flags().GetString("out")
		if err != nil {
			log.Fatalf("error getting out flag: %v", err)
		}

		concurrency, err := cmd.Flags().GetInt("concurrency")
		if err != nil {
			log.Fatalf("error getting concurrency flag: %v", err)
		}

		if concurrency > 0 {
			config.Concurrency = concurrency
		}

		results, err := run.Batch(cmd.Context(), cmd.OutOrStdout(), config, run.BatchArgs{InPath: inPath, OutPath: outPath})
		if err != nil {
			log.Fatalf("error running command: %v", err)
		}

		if n := results.Failures(); n > 0 {
			log.Warnf("%d of %d contracts were rejected", n, len(results))
		}
	},
}

var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Show how the lattice price converges as the step count doubles",
	Run: func(cmd *cobra.Command, args []string) {
		req, err := contractFromFlags(cmd)
		if err != nil {
			log.Fatalf("error reading contract flags: %v", err)
		}

		doublings, err := cmd.Flags().GetInt("doublings")
		if err != nil {
			log.Fatalf("error getting doublings flag: %v", err)
		}

		if err := run.Converge(cmd.Context(), cmd.OutOrStdout(), config, run.ConvergeArgs{Request: req, Doublings: doublings}); err != nil {
			log.Fatalf("error running command: %v", err)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pricing HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		port, err := cmd.Flags().GetString("port")
		if err != nil {
			log.Fatalf("error getting port flag: %v", err)
		}

		if port != "" {
			config.Port = port
		}

		if err := run.Serve(cmd.Context(), config); err != nil {
			log.Fatalf("error running server: %v", err)
		}
	},
}

func addContractFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("underlying", "s", 0, "Spot price of the underlying. This flag is required.")
	cmd.Flags().Float64P("strike", "k", 0, "Strike price. This flag is required.")
	cmd.Flags().Float64P("maturity", "t", 0, "Time to maturity in years, e.g. 0.25 for three months. This flag is required.")
	cmd.Flags().Float64P("volatility", "v", 0, "Annualized volatility, e.g. 0.2 for 20%.")
	cmd.Flags().Float64P("rate", "r", 0, "Annualized continuously compounded risk free rate.")
	cmd.Flags().IntP("steps", "n", 100, "Number of lattice time steps.")
	cmd.Flags().String("kind", "call", "Option kind: call or put.")
	cmd.Flags().String("model", "", "Pricing model: binomial or black-scholes. Defaults to $DEFAULT_MODEL.")
	cmd.Flags().String("symbol", "", "Optional label for the contract.")

	cmd.MarkFlagRequired("underlying")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("maturity")
}

func contractFromFlags(cmd *cobra.Command) (eventmodels.ContractRequest, error) {
	var req eventmodels.ContractRequest
	var err error

	flags := cmd.Flags()
	if req.UnderlyingPrice, err = flags.GetFloat64("underlying"); err != nil {
		return req, err
	}
	if req.StrikePrice, err = flags.GetFloat64("strike"); err != nil {
		return req, err
	}
	if req.TimeToMaturity, err = flags.GetFloat64("maturity"); err != nil {
		return req, err
	}
	if req.Volatility, err = flags.GetFloat64("volatility"); err != nil {
		return req, err
	}
	if req.RiskFreeRate, err = flags.GetFloat64("rate"); err != nil {
		return req, err
	}
	if req.Steps, err = flags.GetInt("steps"); err != nil {
		return req, err
	}
	if req.Kind, err = flags.GetString("kind"); err != nil {
		return req, err
	}
	if req.Model, err = flags.GetString("model"); err != nil {
		return req, err
	}
	if req.Symbol, err = flags.GetString("symbol"); err != nil {
		return req, err
	}

	return req, nil
}

func main() {
	rootCmd.PersistentFlags().String("env-dir", ".", "Directory holding the .env.development or .env.production file.")

	addContractFlags(priceCmd)
	priceCmd.Flags().Bool("verbose", false, "Also print the derived lattice parameters.")

	addContractFlags(convergeCmd)
	convergeCmd.Flags().IntP("doublings", "d", 4, "Number of times to double the step count.")

	batchCmd.Flags().StringP("in", "i", "", "CSV or YAML file of contracts. This flag is required.")
	batchCmd.Flags().StringP("out", "o", "", "Optional CSV file to write the results to.")
	batchCmd.Flags().IntP("concurrency", "c", 0, "Number of contracts priced concurrently. Defaults to $CONCURRENCY.")
	batchCmd.MarkFlagRequired("in")

	serveCmd.Flags().StringP("port", "p", "", "Port to listen on. Defaults to $PORT.")

	rootCmd.AddCommand(priceCmd, batchCmd, convergeCmd, serveCmd)

	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
