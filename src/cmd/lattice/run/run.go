package run

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/lattice-pricer/src/eventmodels"
	"github.com/jiaming2012/lattice-pricer/src/eventpubsub"
	"github.com/jiaming2012/lattice-pricer/src/eventservices"
	"github.com/jiaming2012/lattice-pricer/src/logger"
	"github.com/jiaming2012/lattice-pricer/src/pricing"
	"github.com/jiaming2012/lattice-pricer/src/utils"
)

// Init loads the environment from envDir, configures logging and the event
// bus, and returns the resulting configuration.
func Init(envDir string) (*utils.Config, error) {
	if err := utils.InitEnvironmentVariables(envDir); err != nil {
		return nil, fmt.Errorf("Init: %w", err)
	}

	config, err := utils.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("Init: %w", err)
	}

	logger.Setup(config.LogLevel, config.LogFormat)
	eventpubsub.Init()

	return config, nil
}

func newService(config *utils.Config) *eventservices.PricingService {
	return eventservices.NewPricingService(config.MaxSteps, config.Concurrency, config.DefaultModel)
}

type PriceArgs struct {
	Request eventmodels.ContractRequest
	Verbose bool
}

func Price(ctx context.Context, out io.Writer, config *utils.Config, args PriceArgs) error {
	service := newService(config)

	result, err := service.PriceContract(ctx, args.Request)
	if err != nil {
		return fmt.Errorf("Price: %w", err)
	}

	if args.Verbose && result.Model == pricing.BinomialModelName {
		lattice, err := service.Lattice(args.Request)
		if err != nil {
			return fmt.Errorf("Price: %w", err)
		}

		fmt.Fprint(out, eventmodels.NewLatticeDTO(lattice).String())
	}

	fmt.Fprint(out, eventmodels.PricingResults{result}.String())
	return nil
}

type BatchArgs struct {
	InPath  string
	OutPath string
}

func Batch(ctx context.Context, out io.Writer, config *utils.Config, args BatchArgs) (eventmodels.PricingResults, error) {
	reqs, err := utils.LoadContracts(args.InPath)
	if err != nil {
		return nil, fmt.Errorf("Batch: %w", err)
	}

	onPriced := func(ev eventmodels.ContractPricedEvent) {
		log.Debugf("priced %s (%s): %.6f", ev.Result.ID, ev.Result.Symbol, ev.Result.Price)
	}

	if err := eventpubsub.Subscribe(eventpubsub.ContractPricedEvent, onPriced); err != nil {
		log.Warnf("Batch: progress logging disabled: %v", err)
	} else {
		defer eventpubsub.Unsubscribe(eventpubsub.ContractPricedEvent, onPriced)
	}

	results, err := newService(config).PriceBatch(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("Batch: %w", err)
	}

	eventpubsub.WaitAsync()

	if args.OutPath != "" {
		if err := utils.ExportToCsv(args.OutPath, results); err != nil {
			return nil, fmt.Errorf("Batch: %w", err)
		}

		log.Infof("wrote %d results to %s", len(results), args.OutPath)
	}

	fmt.Fprint(out, results.String())
	return results, nil
}

type ConvergeArgs struct {
	Request   eventmodels.ContractRequest
	Doublings int
}

func Converge(ctx context.Context, out io.Writer, config *utils.Config, args ConvergeArgs) error {
	report, err := newService(config).Converge(ctx, args.Request, args.Doublings)
	if err != nil {
		return fmt.Errorf("Converge: %w", err)
	}

	fmt.Fprint(out, eventmodels.NewConvergenceReportDTO(report).String())
	return nil
}
