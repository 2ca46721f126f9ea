// Package main provides a tool that checks the built-in known-albums table
// and catalog lookups against the Spotify Web API.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
	"github.com/osa030/careersinmusic/internal/infra/spotify"
)

var (
	app          = kingpin.New("careers-spotifycheck", "Spotify catalog checks for Careers in Music")
	clientID     = app.Flag("client-id", "Spotify Client ID").Envar("SPOTIFY_CLIENT_ID").Required().String()
	clientSecret = app.Flag("client-secret", "Spotify Client Secret").Envar("SPOTIFY_CLIENT_SECRET").Required().String()
	market       = app.Flag("market", "Catalog market").Default("US").String()
	timeout      = app.Flag("timeout", "Overall timeout").Default("60s").Duration()

	// known command
	knownCmd = app.Command("known", "Verify every built-in known album id (default)").Default()

	// search command
	searchCmd    = app.Command("search", "Search the catalog for one album")
	searchTitle  = searchCmd.Arg("title", "Album title").Required().String()
	searchArtist = searchCmd.Arg("artist", "Artist name").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := spotify.New(ctx, spotify.Config{
		ClientID:     *clientID,
		ClientSecret: *clientSecret,
		Market:       *market,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case knownCmd.FullCommand():
		if failed := checkKnown(ctx, client); failed > 0 {
			fmt.Printf("\n%d known album(s) failed\n", failed)
			os.Exit(1)
		}
		fmt.Println("\nAll known albums resolved")
	case searchCmd.FullCommand():
		searchAlbum(ctx, client, *searchTitle, *searchArtist)
	}
}

// checkKnown looks up every known album id and reports title mismatches.
// It returns the number of ids that could not be fetched.
func checkKnown(ctx context.Context, client *spotify.Client) int {
	known := spotifylink.KnownAlbums()
	keys := make([]string, 0, len(known))
	for k := range known {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	failed := 0
	for _, key := range keys {
		id := known[key]
		title := key
		if i := strings.LastIndex(key, "_"); i >= 0 {
			title = key[:i]
		}

		album, err := client.GetAlbum(ctx, id)
		if err != nil {
			failed++
			fmt.Printf("  FAIL  %-40s %s: %v\n", key, id, err)
			continue
		}

		status := "OK"
		if !strings.EqualFold(album.Name, title) {
			status = "DIFF"
		}
		fmt.Printf("  %-4s  %-40s %s -> %s (%s)\n", status, key, id, album.Name, strings.Join(album.Artists, ", "))
		// Stay well below the catalog rate limit
		time.Sleep(100 * time.Millisecond)
	}
	return failed
}

func searchAlbum(ctx context.Context, client *spotify.Client, title, artist string) {
	album, err := client.SearchAlbum(ctx, title, artist)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if album == nil {
		fmt.Printf("No catalog match for %q by %s\n", title, artist)
		fmt.Printf("Search link: %s\n", spotifylink.SearchURL(title, artist))
		return
	}

	fmt.Printf("%s - %s (%s)\n", album.Name, strings.Join(album.Artists, ", "), album.ReleaseDate)
	fmt.Printf("  Album: %s\n", album.URL)
	fmt.Printf("  Embed: %s\n", spotifylink.EmbedURL(album.ID))
	if known := spotifylink.KnownID(title, artist); known != "" && known != album.ID {
		fmt.Printf("  Note: known album table uses %s\n", known)
	}
}
