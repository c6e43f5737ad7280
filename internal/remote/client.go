package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

// ErrConnection wraps transport-level failures: dial errors, handshake
// errors, broken sessions. Distinct from a command that ran and failed.
var ErrConnection = errors.New("remote: ssh connection failed")

const (
	// TestTimeout bounds the connectivity probe.
	TestTimeout = 30 * time.Second
	// ScriptTimeout is the default for script execution.
	ScriptTimeout = 300 * time.Second
	// MaxTimeout is the ceiling for any single remote command.
	MaxTimeout = 1800 * time.Second

	dialTimeout = 30 * time.Second
)

// Target identifies one SSH endpoint plus the key material to reach it.
type Target struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte
	Passphrase string
}

// Result captures the outcome of one remote command. TimedOut is a
// separate axis from Success: a command killed by its deadline is
// reported as timed out, not as a generic failure.
type Result struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Client executes commands and transfers files over SSH. Host keys are
// not verified: targets are servers this system created moments earlier,
// so there is no prior key to pin.
type Client struct {
	target Target
}

func NewClient(target Target) *Client {
	return &Client{target: target}
}

func (c *Client) dial() (*ssh.Client, error) {
	signer, err := parseSigner(c.target.PrivateKey, c.target.Passphrase)
	if err != nil {
		return nil, err
	}

	cfg := &ssh.ClientConfig{
		User:            c.target.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	}

	addr := net.JoinHostPort(c.target.Host, fmt.Sprintf("%d", c.target.Port))
	conn, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, addr, err)
	}
	return conn, nil
}

// TestConnection verifies reachability and authentication by running a
// trivial echo and checking the round trip.
func (c *Client) TestConnection(ctx context.Context) (bool, string) {
	res, err := c.ExecuteCommand(ctx, `echo "connection test"`, TestTimeout)
	if err != nil {
		return false, err.Error()
	}
	if res.TimedOut {
		return false, "connection test timed out"
	}
	if !res.Success || !strings.Contains(res.Stdout, "connection test") {
		return false, fmt.Sprintf("unexpected response: %s", res.Stderr)
	}
	return true, "connection successful"
}

// ExecuteCommand runs a single command on the target and waits for it to
// finish or for the timeout to elapse, whichever comes first. Timeouts
// are clamped to MaxTimeout.
func (c *Client) ExecuteCommand(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	conn, err := c.dial()
	if err != nil {
		return Result{}, err
	}
	defer conn.Close()

	return runOnConn(ctx, conn, command, nil, timeout)
}

// ExecuteScript uploads a script body to a unique path under /tmp, marks
// it executable, runs it, and removes it afterwards. Removal happens even
// when the script fails or times out.
func (c *Client) ExecuteScript(ctx context.Context, script string, timeout time.Duration) (Result, error) {
	conn, err := c.dial()
	if err != nil {
		return Result{}, err
	}
	defer conn.Close()

	path := scriptPath()

	upload, err := runOnConn(ctx, conn, fmt.Sprintf("cat > %s && chmod +x %s", path, path),
		strings.NewReader(script), TestTimeout)
	if err != nil {
		return Result{}, err
	}
	if !upload.Success {
		return Result{}, fmt.Errorf("%w: script upload failed: %s", ErrConnection, upload.Stderr)
	}

	defer func() {
		// A timed-out run leaves the session wedged, so cleanup gets
		// its own connection. Best effort only.
		cleanup, err := c.dial()
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("could not reconnect to remove remote script")
			return
		}
		defer cleanup.Close()
		if _, err := runOnConn(context.Background(), cleanup, "rm -f "+path, nil, TestTimeout); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("could not remove remote script")
		}
	}()

	return runOnConn(ctx, conn, path, nil, timeout)
}

// DownloadFile copies a remote file to a local path over SFTP and returns
// the number of bytes written.
func (c *Client) DownloadFile(ctx context.Context, remotePath, localPath string) (int64, error) {
	conn, err := c.dial()
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return 0, fmt.Errorf("%w: sftp subsystem: %v", ErrConnection, err)
	}
	defer client.Close()

	src, err := client.Open(remotePath)
	if err != nil {
		return 0, fmt.Errorf("open remote file %s: %w", remotePath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return 0, fmt.Errorf("create artifact directory: %w", err)
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("create local file %s: %w", localPath, err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", remotePath, err)
	}
	return n, nil
}

// FindLatestFile returns the most recently modified remote file matching
// the glob pattern, or an empty string when nothing matches.
func (c *Client) FindLatestFile(ctx context.Context, pattern string) (string, error) {
	conn, err := c.dial()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return "", fmt.Errorf("%w: sftp subsystem: %v", ErrConnection, err)
	}
	defer client.Close()

	matches, err := client.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}

	return latestByModTime(matches, func(path string) (time.Time, error) {
		info, err := client.Stat(path)
		if err != nil {
			return time.Time{}, err
		}
		return info.ModTime(), nil
	})
}

// latestByModTime picks the path with the newest modification time. Paths
// that cannot be stat'd are skipped rather than failing the whole scan.
func latestByModTime(paths []string, modTime func(string) (time.Time, error)) (string, error) {
	var (
		latest     string
		latestTime time.Time
	)
	for _, p := range paths {
		t, err := modTime(p)
		if err != nil {
			continue
		}
		if latest == "" || t.After(latestTime) {
			latest = p
			latestTime = t
		}
	}
	return latest, nil
}

func scriptPath() string {
	return fmt.Sprintf("/tmp/run_script_%d.sh", time.Now().UnixNano())
}

// lockedBuffer is a bytes.Buffer safe to read while another goroutine
// writes it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// runOnConn executes one command on an established connection, feeding it
// stdin when given, and enforces the timeout by tearing the session down.
func runOnConn(ctx context.Context, conn *ssh.Client, command string, stdin io.Reader, timeout time.Duration) (Result, error) {
	if timeout <= 0 || timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	session, err := conn.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("%w: new session: %v", ErrConnection, err)
	}
	defer session.Close()

	// The timeout path reads the buffers while session.Run is still
	// writing them, so the writes must be serialized.
	var stdout, stderr lockedBuffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if stdin != nil {
		session.Stdin = stdin
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return resultFromRun(stdout.String(), stderr.String(), err)
	case <-timer.C:
		session.Close()
		return Result{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: -1,
			TimedOut: true,
		}, nil
	case <-ctx.Done():
		session.Close()
		return Result{}, ctx.Err()
	}
}

// resultFromRun maps a session.Run error onto a Result. A nonzero exit is
// reported through the result, not as an error; transport failures are.
func resultFromRun(stdout, stderr string, err error) (Result, error) {
	res := Result{Stdout: stdout, Stderr: stderr}
	if err == nil {
		res.Success = true
		return res, nil
	}

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitStatus()
		return res, nil
	}
	return res, fmt.Errorf("%w: %v", ErrConnection, err)
}
