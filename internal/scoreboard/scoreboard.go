// Package scoreboard fetches the day's games from the ESPN scoreboard API.
package scoreboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nbabot/internal/cache"
	"nbabot/internal/logger"
)

// Game is one normalized scoreboard event.
type Game struct {
	Home     string
	Away     string
	HomeLogo string
	AwayLogo string
	Kickoff  string // ISO-8601 as delivered upstream
	Status   string // pre | in | post
}

var statusLabels = map[string]string{
	"pre":  "Programado",
	"in":   "EN VIVO",
	"post": "Finalizado",
}

// StatusLabel maps an upstream status code to its display label; unknown
// codes map to the empty string.
func StatusLabel(status string) string {
	return statusLabels[strings.ToLower(status)]
}

type Client struct {
	URL    string
	Loc    *time.Location
	HTTP   *http.Client
	games  *cache.Cache
	cacheT time.Duration
}

func New(apiURL string, loc *time.Location, timeout time.Duration) *Client {
	return &Client{
		URL:    apiURL,
		Loc:    loc,
		HTTP:   &http.Client{Timeout: timeout},
		games:  cache.New(),
		cacheT: 5 * time.Minute,
	}
}

// upstream payload shapes, trimmed to the fields we read

type payload struct {
	Events []event `json:"events"`
}

type event struct {
	Date         string        `json:"date"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	Competitors []competitor `json:"competitors"`
	Status      struct {
		Type struct {
			State string `json:"state"`
		} `json:"type"`
	} `json:"status"`
}

type competitor struct {
	HomeAway string `json:"homeAway"`
	Team     team   `json:"team"`
}

type team struct {
	ShortDisplayName string `json:"shortDisplayName"`
	DisplayName      string `json:"displayName"`
	Logo             string `json:"logo"`
	Logos            []struct {
		Href string `json:"href"`
	} `json:"logos"`
}

// Today returns the normalized games for the current local date. Events
// without the two-sided competitor structure are skipped.
func (c *Client) Today() ([]Game, error) {
	dateParam := time.Now().In(c.Loc).Format("20060102")

	if cached, ok := c.games.Get(dateParam); ok {
		return cached.([]Game), nil
	}

	resp, err := c.HTTP.Get(c.URL + "?" + url.Values{"dates": {dateParam}}.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch scoreboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoreboard API returned status %d", resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode scoreboard: %w", err)
	}

	games := normalize(p.Events)
	c.games.Set(dateParam, games, c.cacheT)
	return games, nil
}

func normalize(events []event) []Game {
	var games []Game
	for _, ev := range events {
		if len(ev.Competitions) == 0 {
			continue
		}
		comp := ev.Competitions[0]
		if len(comp.Competitors) != 2 {
			logger.Debug("skipping malformed scoreboard event", "competitors", len(comp.Competitors))
			continue
		}

		home, away := comp.Competitors[0], comp.Competitors[1]
		for _, t := range comp.Competitors {
			switch t.HomeAway {
			case "home":
				home = t
			case "away":
				away = t
			}
		}

		games = append(games, Game{
			Home:     displayName(home.Team),
			Away:     displayName(away.Team),
			HomeLogo: logoURL(home.Team),
			AwayLogo: logoURL(away.Team),
			Kickoff:  ev.Date,
			Status:   comp.Status.Type.State,
		})
	}
	return games
}

func displayName(t team) string {
	if t.ShortDisplayName != "" {
		return t.ShortDisplayName
	}
	return t.DisplayName
}

func logoURL(t team) string {
	if t.Logo != "" {
		return t.Logo
	}
	if len(t.Logos) > 0 {
		return t.Logos[0].Href
	}
	return ""
}

// KickoffLocal converts a game's kickoff instant to the local time zone.
func KickoffLocal(g Game, loc *time.Location) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, g.Kickoff); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// Lines renders the plain-text schedule, one bullet per game.
func Lines(games []Game, loc *time.Location) []string {
	var lines []string
	for _, g := range games {
		if g.Home == "" || g.Away == "" {
			continue
		}
		hour := "Horario a confirmar"
		if t, ok := KickoffLocal(g, loc); ok {
			hour = t.Format("15:04")
		}
		line := fmt.Sprintf("• %s @ %s — %s", g.Away, g.Home, hour)
		if label := StatusLabel(g.Status); label != "" {
			line += fmt.Sprintf(" (%s)", label)
		}
		lines = append(lines, line)
	}
	return lines
}

// TodayMessage builds the full textual schedule post under the given header.
// Every failure degrades to an explanatory text; this never errors.
func (c *Client) TodayMessage(header string) string {
	games, err := c.Today()
	if err != nil {
		logger.Warn("scoreboard fetch failed", "err", err)
		return header + "\n\nNo pude obtener los partidos de hoy."
	}
	if len(games) == 0 {
		return header + "\n\nNo hay partidos programados hoy."
	}
	return header + "\n\n" + strings.Join(Lines(games, c.Loc), "\n")
}
