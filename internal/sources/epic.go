package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/jwolfley/unilib/internal/apperr"
)

type epicCLIGame struct {
	AppName          string          `json:"app_name"`
	Title            string          `json:"title"`
	Developer        string          `json:"developer"`
	CoverImage       string          `json:"cover_image"`
	PlaytimeMin      float64         `json:"playtime_minutes"`
	CustomAttributes json.RawMessage `json:"customAttributes"`
}

// epicExtraData is the shape statussync.detectEpicStatus expects back
// out of RawGame.ExtraData — customAttributes.EarlyAccess.value, as
// returned verbatim by Epic's catalog API and passed through by the
// CLI.
type epicExtraData struct {
	CustomAttributes json.RawMessage `json:"customAttributes"`
}

// FetchEpic delegates auth and metadata to an external CLI collaborator
// (spec §4.3), the way the pack's subprocess-invoking adapters do —
// exec.CommandContext, parse stdout as JSON, classify the
// "re-auth required" string as AuthExpired rather than Unknown.
func FetchEpic(ctx context.Context, settings Settings) ([]RawGame, error) {
	cliPath, _ := settings.GetString(ctx, "epic_cli_path", "")
	if cliPath == "" {
		return nil, apperr.New(apperr.NotConfigured, "epic.cli", nil)
	}

	cmd := exec.CommandContext(ctx, cliPath, "list-games", "--json")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "re-auth required") {
			return nil, apperr.New(apperr.AuthExpired, "epic.cli", err)
		}
		return nil, apperr.New(apperr.TransientNetwork, "epic.cli", err)
	}

	var games []epicCLIGame
	if err := json.Unmarshal(stdout.Bytes(), &games); err != nil {
		return nil, apperr.New(apperr.Parse, "epic.cli.parse", err)
	}

	out := make([]RawGame, 0, len(games))
	for _, g := range games {
		rg := RawGame{
			Name:       g.Title,
			Store:      "epic",
			StoreID:    g.AppName,
			Developers: nonEmpty(g.Developer),
		}
		if g.CoverImage != "" {
			rg.CoverImage = strPtr(g.CoverImage)
		}
		if g.PlaytimeMin > 0 {
			rg.PlaytimeHours = floatPtr(g.PlaytimeMin / 60.0)
		}
		if len(g.CustomAttributes) > 0 {
			if raw, err := json.Marshal(epicExtraData{CustomAttributes: g.CustomAttributes}); err == nil {
				rg.ExtraData = strPtr(string(raw))
			}
		}
		out = append(out, rg)
	}
	return out, nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
