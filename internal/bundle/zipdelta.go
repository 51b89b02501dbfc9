// Package bundle packages one produced delta generation into a single
// reproducible ZIP archive, the way the teacher's own package bundle wraps
// a delta.index.json plus patches into delta.zip. Here the payload is the
// EncLog/EncMap/baseline the orchestrator produced rather than source-file
// diffs, but the archive shape — fixed timestamps, a fixed
// entry order, sanitized paths — is the same.
package bundle

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strconv"

	"deltawriter/internal/emit"
	"deltawriter/internal/enc"
	"deltawriter/internal/tokens"
	"deltawriter/internal/ziputil"
)

// index is the JSON manifest written as delta.index.json: a lightweight
// description of the archive's contents, mirroring the teacher's own
// DeltaIndex concept.
type index struct {
	Generation      int            `json:"generation"`
	EncID           string         `json:"encId"`
	EncBaseID       string         `json:"encBaseId"`
	EncLogRows      int            `json:"encLogRows"`
	EncMapTokens    int            `json:"encMapTokens"`
	TableDeltaSizes map[string]int `json:"tableDeltaSizes"`
	ChangedMethods  int            `json:"changedMethods"`
	Diagnostics     int            `json:"diagnostics"`
}

// logRow and its JSON shape for enclog.json.
type logRow struct {
	Token string `json:"token"`
	Func  string `json:"func"`
}

// WriteDelta writes one delta generation's produced artifacts to zipPath:
//
//	delta.index.json   # summary manifest
//	baseline.json      # the NextBaseline, for chaining a subsequent delta
//	enclog.json        # the ordered EncLog rows
//	encmap.json        # the sorted EncMap tokens
//	report.txt         # plain-text report.Summary(res) rendering, if non-empty
//
// Output is deterministic: fixed ZIP timestamps and a fixed entry order.
func WriteDelta(zipPath string, res *emit.Result, reportText string) error {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	sizes := make(map[string]int, len(res.TableDeltaSizes))
	for t, n := range res.TableDeltaSizes {
		sizes[t.String()] = n
	}
	idx := index{
		Generation:      res.NextBaseline.Ordinal,
		EncID:           res.NextBaseline.EncID.String(),
		EncBaseID:       res.NextBaseline.EncBaseID.String(),
		EncLogRows:      len(res.EncLog),
		EncMapTokens:    len(res.EncMap),
		TableDeltaSizes: sizes,
		ChangedMethods:  len(res.ChangedMethods),
		Diagnostics:     len(res.Diagnostics),
	}
	if err := ziputil.WriteJSON(zw, "delta.index.json", idx); err != nil {
		return err
	}
	if err := ziputil.WriteJSON(zw, "baseline.json", res.NextBaseline); err != nil {
		return err
	}
	if err := ziputil.WriteJSON(zw, "enclog.json", encLogRows(res.EncLog)); err != nil {
		return err
	}
	if err := ziputil.WriteJSON(zw, "encmap.json", encMapTokens(res.EncMap)); err != nil {
		return err
	}
	if reportText != "" {
		if err := ziputil.WriteText(zw, "report.txt", []byte(reportText)); err != nil {
			return err
		}
	}
	return nil
}

func encLogRows(rows []enc.LogRow) []logRow {
	out := make([]logRow, len(rows))
	for i, r := range rows {
		out[i] = logRow{Token: tokenString(r.Token), Func: r.Func.String()}
	}
	return out
}

func encMapTokens(toks []tokens.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = tokenString(t)
	}
	return out
}

func tokenString(t tokens.Token) string {
	return t.Table().String() + ":" + strconv.Itoa(int(t.RowID()))
}
