package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/kgraph"
	"github.com/siherrmann/kgraph/model"
)

const invoiceReport = `# Q1 Vendor Report

Acme Corp invoiced $1,234.56 on 2024-03-15 for cloud hosting services.
The invoice was sent to billing@acme.com and is due within 30 days.

Globex Inc submitted two transactions in the same quarter: a payment of
$750.00 on 2024-02-01 and a refund of $89.99 on 2024-02-20. Their accounts
team can be reached at +1 555-123-4567.

Overall vendor spend grew by 12.5% compared to the previous quarter. The
largest single transaction remains the $2,500.00 hardware purchase from
Initech on 2024-01-10.`

const meetingNotes = `# Vendor Review Meeting

The vendor review on 2024-03-20 covered cloud hosting costs and the Initech
hardware purchase. Acme Corp pricing is up for renegotiation; the current
contract runs for 2 years. Action item: confirm the refund from Globex Inc
was processed before 2024-03-01.`

func main() {
	ctx := context.Background()

	k := kgraph.New()

	// Embedding-free pipeline: entity-aware chunking, symbolic retrieval.
	// Swap in k.UseDefaultPipeline() for embeddings via all-MiniLM-L6-v2.
	k.UseSymbolicPipeline()

	entries := []*model.Entry{
		{
			Title:   "Q1 Vendor Report",
			Source:  "basic_example",
			Content: invoiceReport,
			Metadata: model.Metadata{
				"quarter": "Q1",
			},
		},
		{
			Title:   "Vendor Review Meeting",
			Source:  "basic_example",
			Content: meetingNotes,
		},
	}

	fmt.Println("Ingesting entries...")
	for _, entry := range entries {
		numChunks, err := k.AddEntry(ctx, entry)
		if err != nil {
			log.Fatalf("Failed to add entry: %v", err)
		}
		fmt.Printf("Entry %d (%s): %d chunks\n", entry.ID, entry.Title, numChunks)
	}

	g := k.BuildGraph()
	fmt.Printf("\nGraph built: %d nodes, %d relations\n", len(g.Nodes), len(g.Relations))

	queryText := "Which transactions over $500 happened in Q1?"
	fmt.Printf("\nQuerying: %s\n", queryText)

	config := model.DefaultQueryConfig()
	config.MinScore = 0.0

	results, err := k.SymbolicSearch(ctx, queryText, &config)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nFound %d results:\n", len(results))
	for i, result := range results {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Node: %s\n", result.NodeID)
		fmt.Printf("Score: %.4f\n", result.Score)
		fmt.Printf("Content: %s\n", result.Content)
		for _, match := range result.Explanation.EntityMatches {
			fmt.Printf("Entity match: %s %q (boost %.1f, comparison %q)\n",
				match.Type, match.NodeValue, match.Boost, match.Comparison)
		}
	}

	// Show the reasoning chain for the same question
	_, chain, err := k.Reason(ctx, queryText, &config)
	if err != nil {
		log.Fatalf("Failed to build reasoning chain: %v", err)
	}

	fmt.Println("\nReasoning chain:")
	for i, step := range chain.Steps {
		fmt.Printf("%d. [%s] %s (confidence %.2f)\n", i+1, step.Type, step.Description, step.Confidence)
	}

	fmt.Println("\nBasic example completed successfully!")
}
