package extresolve

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// OutOfProcessResolver implements Resolver over a child process's
// stdin/stdout using the newline-delimited JSON protocol: one UTF-8 JSON
// object per message, newline-terminated. This framing is deliberately
// simpler than the Content-Length-header framing a language-server
// connection uses for its JSON-RPC transport — the external-resolver wire
// format names no message size up front, so the reader only needs to split
// on newlines, not parse a header block.
//
// Calls are strictly serial: the child's pipe is not full-duplex-safe for
// concurrent requests, so callLock guarantees only one request is
// in-flight at a time, mirroring the link resolver's single-writer
// discipline for anything that can mutate shared, cross-page state.
type OutOfProcessResolver struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	reader *bufio.Reader

	callLock sync.Mutex

	bundleIdentifier string
	gotBundleID      bool
}

// StartOutOfProcessResolver launches cmd and performs the protocol's
// required startup handshake: the child must send exactly one
// {"bundleIdentifier": "..."} message before anything else.
func StartOutOfProcessResolver(cmd *exec.Cmd) (*OutOfProcessResolver, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	r := &OutOfProcessResolver{
		cmd:    cmd,
		stdin:  stdin,
		reader: bufio.NewReader(stdout),
	}

	var startup struct {
		BundleIdentifier string `json:"bundleIdentifier"`
	}
	if err := r.readInto(&startup); err != nil {
		return nil, fmt.Errorf("extresolve: resolver startup handshake: %w", err)
	}
	r.bundleIdentifier = startup.BundleIdentifier
	r.gotBundleID = true

	return r, nil
}

// Close terminates the child process. The out-of-process resolver must be
// terminated whenever it is dropped, per protocol.
func (r *OutOfProcessResolver) Close() error {
	_ = r.stdin.Close()
	return r.cmd.Process.Kill()
}

func (r *OutOfProcessResolver) readLine() ([]byte, error) {
	line, err := r.reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	return line, nil
}

func (r *OutOfProcessResolver) readInto(v any) error {
	line, err := r.readLine()
	if err != nil {
		return err
	}

	// A protocol violation: the startup message sent again after the
	// handshake completed is fatal.
	var probe struct {
		BundleIdentifier *string `json:"bundleIdentifier"`
	}
	if err := json.Unmarshal(line, &probe); err == nil && probe.BundleIdentifier != nil && r.gotBundleID {
		return fmt.Errorf("extresolve: resolver re-sent bundleIdentifier after handshake")
	}

	return json.Unmarshal(line, v)
}

func (r *OutOfProcessResolver) roundTrip(ctx context.Context, request any, response any) error {
	r.callLock.Lock()
	defer r.callLock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	if _, err := r.stdin.Write(payload); err != nil {
		return fmt.Errorf("extresolve: writing request: %w", err)
	}

	return r.readInto(response)
}

type wireResponse struct {
	ErrorMessage        string               `json:"errorMessage,omitempty"`
	ResolvedInformation *ResolvedInformation `json:"resolvedInformation,omitempty"`
	Asset               *DataAsset           `json:"asset,omitempty"`
}

func (r *OutOfProcessResolver) ResolveTopic(ctx context.Context, url string) (ResolvedInformation, error) {
	var resp wireResponse
	req := struct {
		Topic string `json:"topic"`
	}{Topic: url}
	if err := r.roundTrip(ctx, req, &resp); err != nil {
		return ResolvedInformation{}, err
	}
	if resp.ErrorMessage != "" {
		return ResolvedInformation{}, fmt.Errorf("extresolve: %s", resp.ErrorMessage)
	}
	if resp.ResolvedInformation == nil {
		return ResolvedInformation{}, fmt.Errorf("extresolve: malformed response to topic request")
	}
	return *resp.ResolvedInformation, nil
}

func (r *OutOfProcessResolver) ResolveSymbol(ctx context.Context, preciseID string) (ResolvedInformation, error) {
	var resp wireResponse
	req := struct {
		Symbol string `json:"symbol"`
	}{Symbol: preciseID}
	if err := r.roundTrip(ctx, req, &resp); err != nil {
		return ResolvedInformation{}, err
	}
	if resp.ErrorMessage != "" {
		return ResolvedInformation{}, fmt.Errorf("extresolve: %s", resp.ErrorMessage)
	}
	if resp.ResolvedInformation == nil {
		return ResolvedInformation{}, fmt.Errorf("extresolve: malformed response to symbol request")
	}
	return *resp.ResolvedInformation, nil
}

func (r *OutOfProcessResolver) ResolveAsset(ctx context.Context, req AssetRequest) (DataAsset, error) {
	var resp wireResponse
	wireReq := struct {
		Asset AssetRequest `json:"asset"`
	}{Asset: req}
	if err := r.roundTrip(ctx, wireReq, &resp); err != nil {
		return DataAsset{}, err
	}
	if resp.ErrorMessage != "" {
		return DataAsset{}, fmt.Errorf("extresolve: %s", resp.ErrorMessage)
	}
	if resp.Asset == nil {
		return DataAsset{}, fmt.Errorf("extresolve: malformed response to asset request")
	}
	return *resp.Asset, nil
}
