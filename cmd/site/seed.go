package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	site "github.com/pulsodigital/site"
	"github.com/pulsodigital/site/content"
	"github.com/pulsodigital/site/storage"
)

// seedCmd loads a handful of demo posts and cases into the store so a fresh
// install has something to render.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo content into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := site.LoadConfig()
		if err != nil {
			return err
		}
		store, err := storage.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		posts := []content.PostRow{
			{
				Title:    "Como medir ROI em marketing digital",
				Excerpt:  "Um guia prático para atribuir receita às suas campanhas.",
				Content:  "<p>Medir o retorno real de uma campanha exige mais do que olhar cliques…</p>",
				Category: "analytics",
				Author:   "Equipe Pulso",
				Date:     "2026-08-01",
				ReadTime: "7 min",
				ImageURL: "/blog/roi-marketing.jpg",
				Featured: true,
				Status:   content.StatusPublished,
			},
			{
				Title:    "SEO técnico para sites pequenos",
				Excerpt:  "O que realmente move a agulha quando o site tem 30 páginas.",
				Content:  "<p>Antes de investir em conteúdo, garanta que o rastreio funciona…</p>",
				Category: "seo",
				Author:   "Equipe Pulso",
				Date:     "2026-07-15",
				ReadTime: "5 min",
				ImageURL: "/blog/seo-tecnico.jpg",
				Status:   content.StatusPublished,
			},
		}
		for _, p := range posts {
			raw, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if _, err := store.Insert(ctx, content.TablePosts, raw); err != nil {
				return err
			}
		}

		cases := []content.CaseRow{
			{
				Title:          "Triplicando leads qualificados em 6 meses",
				Slug:           "triplicando-leads-qualificados",
				Description:    "Reestruturação completa do funil de aquisição de um e-commerce.",
				Challenge:      "<p>CPL alto e baixa conversão de visitante para lead…</p>",
				Solution:       "<p>Segmentação de campanhas por intenção e novas landing pages…</p>",
				Results:        "<p>Leads qualificados cresceram 3x com o mesmo orçamento.</p>",
				ClientName:     "Loja Exemplo",
				ClientIndustry: "e-commerce",
				ClientSize:     "11-50",
				Duration:       "6 meses",
				ImageURL:       "/blog/case-leads.jpg",
				Featured:       true,
				Tools:          []string{"Google Ads", "GA4", "Hotjar"},
				Metrics: []content.Metric{
					{Value: "+200%", Label: "Leads qualificados"},
					{Value: "-35%", Label: "CPL"},
				},
				Status: content.StatusPublished,
			},
		}
		for _, cs := range cases {
			raw, err := json.Marshal(cs)
			if err != nil {
				return err
			}
			if _, err := store.Insert(ctx, content.TableCases, raw); err != nil {
				return err
			}
		}

		fmt.Printf("seeded %d posts and %d cases into %s\n", len(posts), len(cases), cfg.DatabasePath)
		return nil
	},
}
