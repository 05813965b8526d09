package cmd

import (
	"fmt"
	"strings"
	"time"

	"simpleink/client"
	"simpleink/model"
	"simpleink/player"

	"github.com/spf13/cobra"
)

var (
	apiURL       string
	apiFallback  bool
	pontosFilter string
)

func newClient() *client.Client {
	base := apiURL
	if base == "" {
		base = "http://localhost:" + cfg.Port
	}
	var opts []client.Option
	if apiFallback {
		opts = append(opts,
			client.WithFallback(client.DefaultSampleData(time.Now())),
			client.WithBreaker(client.DefaultBreakerSettings()),
		)
	}
	return client.New(base, opts...)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func fallbackNote(resp *client.Response) {
	if resp.Fallback {
		fmt.Println("(API indisponível, exibindo dados de exemplo)")
	}
}

var playlistsCmd = &cobra.Command{
	Use:   "playlists [id]",
	Short: "List playlists from a running server, or show one with its pontos",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		ctx := cmd.Context()

		if len(args) == 0 {
			resp, err := c.From("playlists").Select("*").Order("created_at", false).Execute(ctx)
			if err != nil {
				return err
			}
			var playlists []model.Playlist
			if err := resp.Decode(&playlists); err != nil {
				return err
			}
			fallbackNote(resp)
			for _, p := range playlists {
				fmt.Printf("%-36s  %-40s %3d pontos  %4d seguidores  %s\n", p.ID, p.Titulo, p.NumPontos, p.NumFollowers, orDash(p.Compositor))
			}
			return nil
		}

		resp, err := c.From("playlists").Select("*").Eq("id", args[0]).Execute(ctx)
		if err != nil {
			return err
		}
		var p model.Playlist
		if err := resp.Decode(&p); err != nil {
			return err
		}
		fallbackNote(resp)
		fmt.Printf("%s\n%s\nCompositor: %s\n\n", p.Titulo, orDash(p.Subtitulo), orDash(p.Compositor))
		return printPontos(cmd, c, p.ID)
	},
}

var pontosCmd = &cobra.Command{
	Use:   "pontos",
	Short: "List pontos, optionally of one playlist (--playlist null for unassigned)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printPontos(cmd, newClient(), pontosFilter)
	},
}

func printPontos(cmd *cobra.Command, c *client.Client, playlistID string) error {
	q := c.From("pontos").Select("*")
	if playlistID != "" {
		q = q.Eq("playlist_id", playlistID)
	}
	resp, err := q.Execute(cmd.Context())
	if err != nil {
		return err
	}
	var pontos []model.Ponto
	if err := resp.Decode(&pontos); err != nil {
		return err
	}
	fallbackNote(resp)
	for i, p := range pontos {
		duration := "-"
		if p.Duracao != nil {
			duration = player.FormatTime(float64(*p.Duracao))
		}
		audio := "-"
		if p.AudioURL != nil {
			audio = player.ResolveAudioURL(c.BaseURL(), *p.AudioURL)
		}
		fmt.Printf("%2d. %-40s %6s  %s\n", i+1, p.Titulo, duration, audio)
	}
	return nil
}

var historiaCmd = &cobra.Command{
	Use:   "historia",
	Short: "Print the current história text",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().From("historia").Select("*").Execute(cmd.Context())
		if err != nil {
			return err
		}
		if err := resp.Err(); err != nil {
			return err
		}
		if strings.TrimSpace(string(resp.Data)) == "null" {
			fmt.Println("Nenhuma história cadastrada")
			return nil
		}
		var h model.Historia
		if err := resp.Decode(&h); err != nil {
			return err
		}
		fmt.Printf("%s\n\n(atualizada em %s)\n", h.Conteudo, h.CreatedAt.Format("02/01/2006 15:04"))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{playlistsCmd, pontosCmd, historiaCmd} {
		c.Flags().StringVar(&apiURL, "api", "", "server root URL (default http://localhost:$PORT)")
		c.Flags().BoolVar(&apiFallback, "fallback", false, "show sample data when the server cannot be reached")
		rootCmd.AddCommand(c)
	}
	pontosCmd.Flags().StringVar(&pontosFilter, "playlist", "", "playlist id, or null for pontos without a playlist")
}
