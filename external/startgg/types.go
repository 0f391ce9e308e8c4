package startgg

import (
	"fmt"
	"strconv"
	"strings"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// envelope is the GraphQL response body. Some failures arrive with HTTP 200
// and only success=false or a non-empty errors list.
type envelope[T any] struct {
	Success    *bool          `json:"success"`
	Message    string         `json:"message"`
	Errors     []graphQLError `json:"errors"`
	Data       T              `json:"data"`
	Extensions extensions     `json:"extensions"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type extensions struct {
	QueryComplexity int `json:"queryComplexity"`
}

type pageInfo struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
}

type tournamentsData struct {
	Tournaments *struct {
		PageInfo pageInfo         `json:"pageInfo"`
		Nodes    []tournamentNode `json:"nodes"`
	} `json:"tournaments"`
}

type tournamentNode struct {
	ID          flexID      `json:"id"`
	Name        string      `json:"name"`
	URL         string      `json:"url"`
	City        *string     `json:"city"`
	CountryCode *string     `json:"countryCode"`
	AddrState   *string     `json:"addrState"`
	Events      []eventNode `json:"events"`
}

type eventNode struct {
	ID          flexID  `json:"id"`
	Name        string  `json:"name"`
	NumEntrants *int    `json:"numEntrants"`
	Slug        string  `json:"slug"`
	StartAt     *int64  `json:"startAt"`
	State       *string `json:"state"`
}

type eventSetsData struct {
	Event *struct {
		Sets *struct {
			PageInfo pageInfo  `json:"pageInfo"`
			Nodes    []setNode `json:"nodes"`
		} `json:"sets"`
	} `json:"event"`
}

type setNode struct {
	ID    flexID     `json:"id"`
	Slots []slotNode `json:"slots"`
}

type slotNode struct {
	Entrant *struct {
		InitialSeedNum *int `json:"initialSeedNum"`
		Participants   []struct {
			ID     flexID `json:"id"`
			Player *struct {
				ID       flexID `json:"id"`
				GamerTag string `json:"gamerTag"`
			} `json:"player"`
		} `json:"participants"`
	} `json:"entrant"`
	Standing *struct {
		Stats *struct {
			Score *struct {
				Value *float64 `json:"value"`
			} `json:"score"`
		} `json:"stats"`
	} `json:"standing"`
}

// flexID accepts ids sent either as JSON numbers or numeric strings.
type flexID int64

func (f *flexID) UnmarshalJSON(raw []byte) error {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", text)
	}
	*f = flexID(v)
	return nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
