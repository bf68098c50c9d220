package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/service/dairy"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// Usage lines shown when a command cannot be parsed.
var Usage = map[models.CommandType]string{
	models.CommandMilkIn:   "/milkin <cowId|-> <ownerId> <liters> [morning|evening]",
	models.CommandSale:     "/sale <liters> <pricePerLiter> [cash|mpesa] <customer name>",
	models.CommandSpoilt:   "/spoilt <liters> <lossAmount> [cause]",
	models.CommandEligible: "/eligible <cowId>",
	models.CommandStock:    "/stock",
}

// DairyService is the subset of use cases reachable from chat.
type DairyService interface {
	RecordMilkIn(ctx context.Context, in dairy.MilkInInput) (*models.MilkInEntry, error)
	RecordSale(ctx context.Context, in dairy.SaleInput) (*models.MilkOutEntry, error)
	RecordSpoilage(ctx context.Context, in dairy.SpoilageInput) (*models.MilkSpoiltEntry, error)
	CheckEligibility(ctx context.Context, cowID, date string) (*models.CowEligibility, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	StockSummary(ctx context.Context, date time.Time) (models.StockSummary, error)
}

// Dispatcher executes parsed commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	dairy     DairyService
	reporting ReportingAdapter
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher. loc decides the date and milking session of
// chat entries; nil means UTC.
func NewService(dairySvc DairyService, reporting ReportingAdapter, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		dairy:     dairySvc,
		reporting: reporting,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs the command against the dairy use cases. Entries are dated today.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	localNow := s.now().In(s.loc)
	today := calendar.Day(localNow)

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandMilkIn:
		input, err := buildMilkIn(cmd, today, localNow)
		if err != nil {
			return "", err
		}
		entry, err := s.dairy.RecordMilkIn(ctx, input)
		if err != nil {
			return "", err
		}
		subject := "herd of " + entry.OwnerID
		if entry.CowID != "" {
			subject = "cow " + entry.CowID
		}
		message := fmt.Sprintf("Milk-in %s saved: %.2f L from %s (%s, %s).",
			entry.EntryID, entry.Liters, subject, strings.ToLower(string(entry.MilkingType)), calendar.Format(entry.Date))
		return s.withStock(ctx, message, today), nil
	case models.CommandSale:
		input, err := buildSale(cmd, today)
		if err != nil {
			return "", err
		}
		entry, err := s.dairy.RecordSale(ctx, input)
		if err != nil {
			return "", err
		}
		total := entry.QuantitySold * entry.PricePerLiter
		message := fmt.Sprintf("Sale %s recorded for %s: %.2f L @ %.2f = %.2f (%s).",
			entry.SaleID, entry.CustomerName, entry.QuantitySold, entry.PricePerLiter, total, strings.ToLower(string(entry.PaymentMode)))
		return s.withStock(ctx, message, today), nil
	case models.CommandSpoilt:
		input, err := buildSpoilage(cmd, today)
		if err != nil {
			return "", err
		}
		entry, err := s.dairy.RecordSpoilage(ctx, input)
		if err != nil {
			return "", err
		}
		message := fmt.Sprintf("Spoilage %s logged: %.2f L, loss %.2f.", entry.SpoiltID, entry.AmountSpoilt, entry.LossAmount)
		if entry.Cause != nil {
			message += fmt.Sprintf(" Cause: %s.", strings.ToLower(string(*entry.Cause)))
		}
		return s.withStock(ctx, message, today), nil
	case models.CommandEligible:
		if len(cmd.Args) != 1 {
			return "", ErrInvalidArguments
		}
		result, err := s.dairy.CheckEligibility(ctx, cmd.Args[0], calendar.Format(today))
		if err != nil {
			return "", err
		}
		if result.IsEligible {
			return fmt.Sprintf("%s (%s) can be milked today.", result.CowID, result.CowName), nil
		}
		message := fmt.Sprintf("%s (%s) is blocked: %s.", result.CowID, result.CowName, *result.Reason)
		return message, nil
	case models.CommandStock:
		if s.reporting == nil {
			return "", ErrUnsupportedCommand
		}
		summary, err := s.reporting.StockSummary(ctx, today)
		if err != nil {
			return "", err
		}
		return FormatStockSummary(today, summary), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// FormatStockSummary renders a stock summary for chat.
func FormatStockSummary(date time.Time, summary models.StockSummary) string {
	return fmt.Sprintf("Stock %s: %.2f L in stock. Today: %.2f L collected, %.2f L sold. Week: %.2f L sold, %.2f L spoilt. Month: %.2f L sold.",
		calendar.Format(date), summary.CurrentStock, summary.DailyProduce, summary.DailyTotalLitersSold,
		summary.WeeklySold, summary.WeeklySpoilt, summary.MonthlySold)
}

func (s *Service) withStock(ctx context.Context, message string, today time.Time) string {
	summary := s.safeSummary(ctx, func(ctx context.Context) (string, error) {
		if s.reporting == nil {
			return "", nil
		}
		stock, err := s.reporting.StockSummary(ctx, today)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Stock now %.2f L.", stock.CurrentStock), nil
	})
	if summary != "" {
		message += "\n" + summary
	}
	return message
}

func buildMilkIn(cmd models.Command, today, localNow time.Time) (dairy.MilkInInput, error) {
	if len(cmd.Args) < 3 || len(cmd.Args) > 4 {
		return dairy.MilkInInput{}, ErrInvalidArguments
	}

	cowID := cmd.Args[0]
	if cowID == "-" {
		cowID = ""
	}

	liters, err := strconv.ParseFloat(cmd.Args[2], 64)
	if err != nil {
		return dairy.MilkInInput{}, ErrInvalidArguments
	}

	// Before noon counts as the morning session unless stated.
	milking := string(models.MilkingMorning)
	if localNow.Hour() >= 12 {
		milking = string(models.MilkingEvening)
	}
	if len(cmd.Args) == 4 {
		milking = cmd.Args[3]
	}

	return dairy.MilkInInput{
		CowID:       cowID,
		OwnerID:     cmd.Args[1],
		Liters:      liters,
		Date:        calendar.Format(today),
		MilkingType: milking,
	}, nil
}

func buildSale(cmd models.Command, today time.Time) (dairy.SaleInput, error) {
	if len(cmd.Args) < 3 {
		return dairy.SaleInput{}, ErrInvalidArguments
	}

	quantity, err := strconv.ParseFloat(cmd.Args[0], 64)
	if err != nil {
		return dairy.SaleInput{}, ErrInvalidArguments
	}

	price, err := strconv.ParseFloat(cmd.Args[1], 64)
	if err != nil {
		return dairy.SaleInput{}, ErrInvalidArguments
	}

	payment := string(models.PaymentCash)
	idx := 2
	if _, err := models.ParsePaymentMode(cmd.Args[2]); err == nil {
		payment = cmd.Args[2]
		idx = 3
	}

	if len(cmd.Args) <= idx {
		return dairy.SaleInput{}, ErrInvalidArguments
	}

	return dairy.SaleInput{
		CustomerName:  strings.Join(cmd.Args[idx:], " "),
		Date:          calendar.Format(today),
		QuantitySold:  quantity,
		PricePerLiter: price,
		PaymentMode:   payment,
	}, nil
}

func buildSpoilage(cmd models.Command, today time.Time) (dairy.SpoilageInput, error) {
	if len(cmd.Args) < 2 || len(cmd.Args) > 3 {
		return dairy.SpoilageInput{}, ErrInvalidArguments
	}

	amount, err := strconv.ParseFloat(cmd.Args[0], 64)
	if err != nil {
		return dairy.SpoilageInput{}, ErrInvalidArguments
	}

	loss, err := strconv.ParseFloat(cmd.Args[1], 64)
	if err != nil {
		return dairy.SpoilageInput{}, ErrInvalidArguments
	}

	cause := ""
	if len(cmd.Args) == 3 {
		cause = cmd.Args[2]
	}

	return dairy.SpoilageInput{Date: calendar.Format(today), AmountSpoilt: amount, LossAmount: loss, Cause: cause}, nil
}

func (s *Service) safeSummary(ctx context.Context, fn func(context.Context) (string, error)) string {
	if fn == nil {
		return ""
	}

	summary, err := fn(ctx)
	if err != nil {
		s.logger.Debug("stock summary failed", zap.Error(err))
		return ""
	}

	return summary
}
