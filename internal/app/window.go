package app

import (
	"fmt"
	"time"

	"github.com/riskibarqy/bracket-harvest/internal/config"
	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/usecase"
	"github.com/urfave/cli/v2"
)

// Window is the date and location scope shared by harvest and export.
type Window struct {
	Start       time.Time
	End         time.Time
	CountryCode string
	AddrState   string
}

func WindowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "start-date",
			Value: config.DefaultStartDate,
			Usage: "first day of the window, DD/MM/YYYY",
		},
		&cli.StringFlag{
			Name:  "end-date",
			Value: config.DefaultEndDate,
			Usage: "last day of the window, DD/MM/YYYY",
		},
		&cli.StringFlag{
			Name:  "country-code",
			Value: config.DefaultCountryCode,
			Usage: "tournament country code, None disables the filter",
		},
		&cli.StringFlag{
			Name:  "addr-state",
			Value: config.DefaultAddrState,
			Usage: "tournament state or region, None disables the filter",
		},
	}
}

func WindowFromFlags(c *cli.Context) (Window, error) {
	start, err := config.ParseRunDate(c.String("start-date"))
	if err != nil {
		return Window{}, fmt.Errorf("--start-date: %w", err)
	}
	end, err := config.ParseRunDate(c.String("end-date"))
	if err != nil {
		return Window{}, fmt.Errorf("--end-date: %w", err)
	}
	return Window{
		Start:       start,
		End:         end,
		CountryCode: config.OptionalFilter(c.String("country-code")),
		AddrState:   config.OptionalFilter(c.String("addr-state")),
	}, nil
}

func (w Window) TournamentFilter() usecase.TournamentFilter {
	return usecase.TournamentFilter{
		AfterDate:   w.Start,
		BeforeDate:  w.End,
		CountryCode: w.CountryCode,
		AddrState:   w.AddrState,
	}
}

func (w Window) ExportQuery() matchset.ExportQuery {
	return matchset.ExportQuery{
		StartDate:   w.Start,
		EndDate:     w.End,
		CountryCode: w.CountryCode,
		AddrState:   w.AddrState,
	}
}
