package eventservices

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jiaming2012/lattice-pricer/src/eventmodels"
	"github.com/jiaming2012/lattice-pricer/src/eventpubsub"
	"github.com/jiaming2012/lattice-pricer/src/pricing"
)

// PricingService prices contract requests. Calls share no mutable state, so a
// single service may be used from many goroutines.
type PricingService struct {
	maxSteps     int
	concurrency  int
	defaultModel string
}

func NewPricingService(maxSteps int, concurrency int, defaultModel string) *PricingService {
	if concurrency < 1 {
		concurrency = 1
	}

	return &PricingService{
		maxSteps:     maxSteps,
		concurrency:  concurrency,
		defaultModel: defaultModel,
	}
}

func (s *PricingService) resolve(req eventmodels.ContractRequest) (pricing.Model, pricing.ContractSpec, error) {
	name := req.Model
	if name == "" {
		name = s.defaultModel
	}

	model, err := pricing.ModelByName(name)
	if err != nil {
		return nil, pricing.ContractSpec{}, err
	}

	spec, err := req.ToSpec()
	if err != nil {
		return nil, pricing.ContractSpec{}, err
	}

	if err := s.checkSteps(spec.StepCount, 0); err != nil {
		return nil, pricing.ContractSpec{}, err
	}

	return model, spec, nil
}

// checkSteps enforces the configured lattice size limit on a lattice of
// steps*2^doublings steps.
func (s *PricingService) checkSteps(steps int, doublings int) error {
	if s.maxSteps <= 0 || doublings < 0 || doublings > 30 {
		return nil
	}

	if steps > s.maxSteps>>doublings {
		return fmt.Errorf("step count %d exceeds the limit of %d: %w", steps<<doublings, s.maxSteps, pricing.ErrInvalidParameter)
	}

	return nil
}

// price always returns a result; on failure its Error field is set as well.
func (s *PricingService) price(ctx context.Context, req eventmodels.ContractRequest) (*eventmodels.PricingResult, error) {
	tracer := otel.GetTracerProvider().Tracer("eventservices:pricing")
	ctx, span := tracer.Start(ctx, "PriceContract")
	defer span.End()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	logger := log.WithContext(ctx).WithFields(log.Fields{
		"id":     req.ID,
		"symbol": req.Symbol,
	})

	span.SetAttributes(attribute.String("id", req.ID), attribute.String("symbol", req.Symbol), attribute.Int("steps", req.Steps))

	start := time.Now()
	model, spec, err := s.resolve(req)

	modelName := req.Model
	if model != nil {
		modelName = model.Name()
	}

	result := eventmodels.NewPricingResult(req, modelName)

	var price float64
	if err == nil {
		price, err = model.Price(spec)
	}

	result.SetElapsed(time.Since(start))

	if err != nil {
		result.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warnf("rejected contract: %v", err)
		eventpubsub.Publish(eventpubsub.ContractRejectedEvent, eventmodels.ContractRejectedEvent{Request: req, Err: err})
		return result, err
	}

	result.Price = price
	span.SetAttributes(attribute.Float64("price", price))
	logger.WithField("elapsed_us", result.ElapsedMicros).Debugf("priced %s %s at %.6f", modelName, spec.Kind, price)
	eventpubsub.Publish(eventpubsub.ContractPricedEvent, eventmodels.ContractPricedEvent{Result: result})

	return result, nil
}

func (s *PricingService) PriceContract(ctx context.Context, req eventmodels.ContractRequest) (*eventmodels.PricingResult, error) {
	result, err := s.price(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("PriceContract: %w", err)
	}

	return result, nil
}

// PriceBatch prices every request on a bounded worker group. Results keep the
// order of reqs; a rejected contract is reported in its result and does not
// stop the batch. Only cancellation of ctx fails the batch as a whole.
func (s *PricingService) PriceBatch(ctx context.Context, reqs []eventmodels.ContractRequest) (eventmodels.PricingResults, error) {
	tracer := otel.GetTracerProvider().Tracer("eventservices:pricing")
	ctx, span := tracer.Start(ctx, "PriceBatch", trace.WithAttributes(attribute.Int("contracts", len(reqs))))
	defer span.End()

	results := make(eventmodels.PricingResults, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			results[i], _ = s.price(gctx, req)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("PriceBatch: %w", err)
	}

	log.WithContext(ctx).Infof("priced %d contracts, %d rejected", len(results), results.Failures())
	eventpubsub.Publish(eventpubsub.BatchCompletedEvent, results)

	return results, nil
}

// Converge runs a convergence study for req. The largest lattice it builds is
// subject to the same step limit as a single contract.
func (s *PricingService) Converge(ctx context.Context, req eventmodels.ContractRequest, doublings int) (*pricing.ConvergenceReport, error) {
	tracer := otel.GetTracerProvider().Tracer("eventservices:pricing")
	_, span := tracer.Start(ctx, "Converge", trace.WithAttributes(attribute.Int("doublings", doublings)))
	defer span.End()

	spec, err := req.ToSpec()
	if err != nil {
		return nil, fmt.Errorf("Converge: %w", err)
	}

	if err := s.checkSteps(spec.StepCount, doublings); err != nil {
		return nil, fmt.Errorf("Converge: %w", err)
	}

	report, err := pricing.Converge(spec, doublings)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("Converge: %w", err)
	}

	return report, nil
}

func (s *PricingService) Lattice(req eventmodels.ContractRequest) (*pricing.Lattice, error) {
	spec, err := req.ToSpec()
	if err != nil {
		return nil, fmt.Errorf("Lattice: %w", err)
	}

	return pricing.NewLattice(spec)
}
