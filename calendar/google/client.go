package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/guilherme-santos/gluecal/internal"
)

const (
	defaultSleep = 5 * time.Second
	pageSize     = 250
	callbackPath = "/gluecal"
)

// Client owns the OAuth configuration and opens a Calendar per account.
type Client struct {
	oauthCfg *oauth2.Config
	output   io.Writer

	Verbose bool
	// ListenAddr is where Login waits for the OAuth redirect.
	ListenAddr string
}

func NewClient(output io.Writer, credJSON []byte) (*Client, error) {
	if output == nil {
		output = os.Stdout
	}
	oauthCfg, err := google.ConfigFromJSON(credJSON, calendar.CalendarEventsScope, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %v", err)
	}

	return &Client{
		oauthCfg:   oauthCfg,
		output:     output,
		ListenAddr: "localhost:8080",
	}, nil
}

// Provider implements internal.Platform.
func (c *Client) Provider(ctx context.Context, acc *internal.Account, calendarID string) (internal.Provider, error) {
	svc, err := c.calendarSvc(ctx, acc.Auth)
	if err != nil {
		return nil, err
	}
	cal := NewCalendar(c.output, svc, calendarID)
	cal.Verbose = c.Verbose
	return cal, nil
}

// Login runs the OAuth consent flow. onURL receives the link the user has to
// open; the redirect is served on ListenAddr.
func (c *Client) Login(ctx context.Context, onURL func(authURL string)) (*oauth2.Token, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ln, err := net.Listen("tcp", c.ListenAddr)
	if err != nil {
		return nil, err
	}

	state := fmt.Sprintf("gluecal-%d", time.Now().UTC().Nanosecond())
	cfg := *c.oauthCfg
	cfg.RedirectURL = "http://" + ln.Addr().String() + callbackPath
	onURL(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	mux := http.NewServeMux()
	server := &http.Server{
		Handler: mux,
	}

	var (
		token   *oauth2.Token
		authErr error
	)

	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			go server.Shutdown(context.Background())
		}()

		query := req.URL.Query()
		if query.Get("state") != state {
			authErr = errors.New("oauth link is not valid")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		token, authErr = cfg.Exchange(ctx, query.Get("code"))
		if authErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Unable to retrieve token:", authErr)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "All good, you can close this window!")
	})

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	err = server.Serve(ln)
	if err != nil && err != http.ErrServerClosed {
		return nil, err
	}
	if authErr != nil {
		return nil, authErr
	}
	if token == nil {
		return nil, ctx.Err()
	}
	return token, nil
}

// Email returns the address of the account owning tok, which is the id of
// its primary calendar.
func (c *Client) Email(ctx context.Context, tok *oauth2.Token) (string, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(c.oauthCfg.Client(ctx, tok)))
	if err != nil {
		return "", err
	}
	cal, err := svc.Calendars.Get("primary").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return cal.Id, nil
}

func (c *Client) calendarSvc(ctx context.Context, auth string) (*calendar.Service, error) {
	var tok *oauth2.Token
	err := json.Unmarshal([]byte(auth), &tok)
	if err != nil {
		return nil, fmt.Errorf("google: decoding token: %w", err)
	}
	return calendar.NewService(ctx, option.WithHTTPClient(c.oauthCfg.Client(ctx, tok)))
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded") || errIsReason(err, "userRateLimitExceeded")
}

func notFound(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}
	return gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, err := range gErr.Errors {
		switch err.Reason {
		case reason:
			return true
		}
	}
	return false
}
