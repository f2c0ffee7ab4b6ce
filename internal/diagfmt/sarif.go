package diagfmt

import (
	"encoding/json"
	"io"

	"doccc/internal/diag"
	"doccc/internal/source"
)

const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
const sarifVersion = "2.1.0"

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string            `json:"id"`
	ShortDescription sarifMessage      `json:"shortDescription"`
	DefaultConfig    sarifRuleConfig   `json:"defaultConfiguration"`
	Properties       map[string]string `json:"properties,omitempty"`
}

type sarifRuleConfig struct {
	Level string `json:"level"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
}

type sarifFix struct {
	Description     sarifMessage           `json:"description"`
	ArtifactChanges []sarifArtifactChange  `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion          `json:"deletedRegion"`
	InsertedContent sarifInsertedContent `json:"insertedContent"`
}

type sarifInsertedContent struct {
	Text string `json:"text"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	case diag.SevInfo:
		return "note"
	default:
		return "note"
	}
}

func sarifRegionFor(span source.Span, fs *source.FileSet) sarifRegion {
	start, end := fs.Resolve(span)
	return sarifRegion{
		StartLine:   start.Line,
		StartColumn: start.Col,
		EndLine:     end.Line,
		EndColumn:   end.Col,
	}
}

func sarifArtifactURI(span source.Span, fs *source.FileSet) string {
	return fs.Get(span.File).FormatPath("relative", fs.BaseDir())
}

// Sarif formats diagnostics as a SARIF v2.1.0 log, suitable for upload to a
// code-scanning host (GitHub, GitLab, ...). One run covers the whole Bag, one
// rule is emitted per distinct diagnostic code so a host can group/suppress
// by rule, and Fix edits are carried over as SARIF fix.artifactChanges when
// they can be resolved without error.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	items := bag.Items()

	rules := make([]sarifRule, 0)
	seenRule := make(map[string]bool)
	results := make([]sarifResult, 0, len(items))

	ctx := diag.FixBuildContext{FileSet: fs}

	for _, d := range items {
		ruleID := d.Code.ID()
		if !seenRule[ruleID] {
			seenRule[ruleID] = true
			rules = append(rules, sarifRule{
				ID:               ruleID,
				ShortDescription: sarifMessage{Text: d.Code.Title()},
				DefaultConfig:    sarifRuleConfig{Level: sarifLevel(d.Severity)},
			})
		}

		result := sarifResult{
			RuleID:  ruleID,
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
			Locations: []sarifLocation{
				{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: sarifArtifactURI(d.Primary, fs)},
						Region:           sarifRegionFor(d.Primary, fs),
					},
				},
			},
		}

		for _, fix := range d.Fixes {
			resolved, err := fix.Resolve(ctx)
			if err != nil || len(resolved.Edits) == 0 {
				continue
			}
			changesByFile := make(map[source.FileID]*sarifArtifactChange)
			order := make([]source.FileID, 0, 1)
			for _, edit := range resolved.Edits {
				change, ok := changesByFile[edit.Span.File]
				if !ok {
					change = &sarifArtifactChange{
						ArtifactLocation: sarifArtifactLocation{URI: sarifArtifactURI(edit.Span, fs)},
					}
					changesByFile[edit.Span.File] = change
					order = append(order, edit.Span.File)
				}
				change.Replacements = append(change.Replacements, sarifReplacement{
					DeletedRegion:   sarifRegionFor(edit.Span, fs),
					InsertedContent: sarifInsertedContent{Text: edit.NewText},
				})
			}
			changes := make([]sarifArtifactChange, 0, len(order))
			for _, fid := range order {
				changes = append(changes, *changesByFile[fid])
			}
			result.Fixes = append(result.Fixes, sarifFix{
				Description:     sarifMessage{Text: resolved.Title},
				ArtifactChanges: changes,
			})
		}

		results = append(results, result)
	}

	log := sarifLog{
		Schema:  sarifSchemaURI,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    meta.ToolName,
						Version: meta.ToolVersion,
						Rules:   rules,
					},
				},
				Invocations: []sarifInvocation{
					{
						Arguments:           meta.InvocationArgs,
						ExecutionSuccessful: !bag.HasErrors(),
					},
				},
				Results: results,
			},
		},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}
