package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DanePascual/studyhall/internal/browser"
	"github.com/DanePascual/studyhall/internal/config"
	"github.com/DanePascual/studyhall/internal/logging"
	"github.com/DanePascual/studyhall/internal/tui"
	"github.com/DanePascual/studyhall/pkg/client"
	"github.com/DanePascual/studyhall/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// tokenFilePath returns ~/.studyhall/token.
func tokenFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".studyhall", "token"), nil
}

// readToken returns the auth token using precedence: env var > file > empty.
func readToken() string {
	if tok := os.Getenv("STUDYHALL_TOKEN"); tok != "" {
		return tok
	}
	path, err := tokenFilePath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func run() error {
	cfg, err := config.Load(os.Getenv("STUDYHALL_CONFIG"))
	if err != nil {
		return err
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("studyhall " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "web":
			return openSite(cfg)
		case "login":
			return runLogin(cfg)
		case "logout":
			return runLogout()
		}
	}

	token := readToken()
	if token == "" {
		printWelcome()
		return nil
	}
	return launch(cfg, token)
}

func launch(cfg config.Config, token string) error {
	log, closeLog := logging.Open(cfg.LogDir)
	defer closeLog() //nolint:errcheck

	c := client.New(cfg.APIURL, token,
		client.WithLogger(log),
		client.WithUploadTimeout(cfg.UploadTimeout))

	// Only force re-login on actual auth failures (401), not transient errors.
	me, err := c.GetProfile(context.Background())
	if err != nil {
		if client.IsStatus(err, 401) {
			printWelcome()
			return nil
		}
		log.Warn().Err(err).Msg("profile fetch failed at startup, launching anyway")
		me = &domain.Profile{}
	}

	bridge := tui.NewBridge()
	app := tui.NewApp(tui.AppConfig{
		Client:        c,
		Me:            me,
		MirrorPath:    filepath.Join(cfg.LogDir, "profile.json"),
		InviteBase:    baseSiteURL(cfg.APIURL),
		Bridge:        bridge,
		Log:           log,
		RedirectDelay: cfg.RedirectDelay,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	bridge.Bind(p.Send)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// baseSiteURL derives the web-app URL from the API URL by stripping the
// "api." host prefix. STUDYHALL_BASE_URL overrides the derivation.
func baseSiteURL(apiURL string) string {
	if base := os.Getenv("STUDYHALL_BASE_URL"); base != "" {
		return strings.TrimRight(base, "/")
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return apiURL
	}
	host := u.Hostname()
	if strings.HasPrefix(host, "api.") {
		port := u.Port()
		u.Host = strings.TrimPrefix(host, "api.")
		if port != "" {
			u.Host += ":" + port
		}
	}
	return strings.TrimRight(u.String(), "/")
}

func openSite(cfg config.Config) error {
	site := baseSiteURL(cfg.APIURL)
	if err := browser.Open(site); err != nil {
		fmt.Println(site)
	}
	return nil
}

func runLogin(cfg config.Config) error {
	// Ephemeral localhost server on a random port receives the callback.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Close() //nolint:errcheck

	port := listener.Addr().(*net.TCPAddr).Port
	tokenCh := make(chan string, 1)
	errCh := make(chan error, 1)

	// CSRF state token.
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return fmt.Errorf("generate oauth state: %w", err)
	}
	expectedState := hex.EncodeToString(stateBytes)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != expectedState {
			http.Error(w, "invalid state", http.StatusForbidden)
			errCh <- fmt.Errorf("callback state mismatch (possible CSRF)")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errCh <- fmt.Errorf("callback received without code")
			return
		}
		// Exchange the one-time code for a session token.
		exchangeBody, err := json.Marshal(map[string]string{"code": code})
		if err != nil {
			http.Error(w, "marshal failed", http.StatusInternalServerError)
			errCh <- fmt.Errorf("code exchange marshal: %w", err)
			return
		}
		exchangeResp, exchangeErr := http.Post(cfg.APIURL+"/auth/cli-exchange", "application/json",
			bytes.NewReader(exchangeBody))
		if exchangeErr != nil {
			http.Error(w, "exchange failed", http.StatusInternalServerError)
			errCh <- fmt.Errorf("code exchange: %w", exchangeErr)
			return
		}
		defer exchangeResp.Body.Close() //nolint:errcheck
		if exchangeResp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(exchangeResp.Body, 1<<20)) //nolint:errcheck // best-effort read for error message
			http.Error(w, "exchange failed", http.StatusInternalServerError)
			errCh <- fmt.Errorf("code exchange: HTTP %d: %s", exchangeResp.StatusCode, string(body))
			return
		}
		var result struct {
			Token string `json:"token"`
		}
		if decErr := json.NewDecoder(exchangeResp.Body).Decode(&result); decErr != nil || result.Token == "" {
			http.Error(w, "exchange failed", http.StatusInternalServerError)
			errCh <- fmt.Errorf("code exchange: invalid response")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, callbackHTML) //nolint:errcheck
		tokenCh <- result.Token
	})

	srv := &http.Server{Handler: mux}
	go func() {
		if srvErr := srv.Serve(listener); srvErr != nil && srvErr != http.ErrServerClosed {
			errCh <- srvErr
		}
	}()

	loginParams := url.Values{}
	loginParams.Set("cli_port", strconv.Itoa(port))
	loginParams.Set("state", expectedState)
	loginURL := baseSiteURL(cfg.APIURL) + "/auth/login?" + loginParams.Encode()

	fmt.Printf("Opening browser to sign in...\n")
	if err := browser.Open(loginURL); err != nil {
		fmt.Printf("Could not open browser. Visit this URL manually:\n  %s\n", loginURL)
	}

	select {
	case tok := <-tokenCh:
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck

		tokPath, err := tokenFilePath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(tokPath), 0700); err != nil {
			return fmt.Errorf("create ~/.studyhall dir: %w", err)
		}
		if err := os.WriteFile(tokPath, []byte(tok), 0600); err != nil {
			return fmt.Errorf("save token: %w", err)
		}

		c := client.New(cfg.APIURL, tok)
		me, err := c.GetProfile(context.Background())
		if err != nil {
			fmt.Printf("Token saved but verification failed: %v\n", err)
			return nil
		}
		fmt.Printf("Signed in as %s\n\n", me.Name)

		return launch(cfg, tok)

	case srvErr := <-errCh:
		return fmt.Errorf("callback server error: %w", srvErr)

	case <-time.After(2 * time.Minute):
		return fmt.Errorf("login timed out, no callback received within 2 minutes")
	}
}

func runLogout() error {
	tokPath, err := tokenFilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(tokPath); os.IsNotExist(err) {
		fmt.Println("Already signed out.")
		return nil
	}
	if err := os.Remove(tokPath); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}

const callbackHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>StudyHall</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{
  background:#0d1117;color:#e4e4ec;
  font-family:'SF Mono','Consolas',monospace;
  height:100vh;display:flex;align-items:center;justify-content:center;
}
.card{text-align:center}
.logo{font-size:28px;font-weight:700;letter-spacing:6px;color:#4ade80;margin-bottom:24px}
.msg{font-size:14px;color:#4ade80;font-weight:600;margin-bottom:8px}
.sub{font-size:12px;color:#505868}
</style>
</head>
<body>
<div class="card">
  <div class="logo">STUDYHALL</div>
  <div class="msg">signed in</div>
  <div class="sub">return to your terminal</div>
</div>
</body>
</html>`
