package services

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// semanticModel is the YAML skeleton handed to downstream semantic-layer
// tooling. It carries structure and inferred keys, not business meaning.
type semanticModel struct {
	Database string          `yaml:"database"`
	Schema   string          `yaml:"schema"`
	Tables   []semanticTable `yaml:"tables"`
	Joins    []semanticJoin  `yaml:"joins,omitempty"`
}

type semanticTable struct {
	Name           string           `yaml:"name"`
	Classification string           `yaml:"classification"`
	Description    string           `yaml:"description,omitempty"`
	RowCount       *int64           `yaml:"row_count,omitempty"`
	PrimaryKey     []string         `yaml:"primary_key,omitempty"`
	Columns        []semanticColumn `yaml:"columns"`
}

type semanticColumn struct {
	Name     string `yaml:"name"`
	DataType string `yaml:"data_type"`
	Nullable bool   `yaml:"nullable"`
}

type semanticJoin struct {
	From        string  `yaml:"from"`
	To          string  `yaml:"to"`
	Cardinality string  `yaml:"cardinality"`
	Confidence  float64 `yaml:"confidence"`
}

// BuildSemanticModel renders the YAML semantic-model skeleton for a run.
func BuildSemanticModel(result *models.DiscoveryResult) (string, error) {
	model := semanticModel{
		Database: result.Request.Database,
		Schema:   result.Request.Schema,
	}

	for _, table := range result.Tables {
		st := semanticTable{
			Name:           table.Ref.Table,
			Classification: table.Classification,
			Description:    table.Comment,
			RowCount:       table.RowCount,
		}
		if profile := result.ProfileFor(table.Ref); profile != nil {
			if len(profile.CompositeKey) > 0 {
				st.PrimaryKey = profile.CompositeKey
			} else if pk := profile.PKColumn(); pk != "" {
				st.PrimaryKey = []string{pk}
			}
		}
		for _, col := range table.Columns {
			st.Columns = append(st.Columns, semanticColumn{
				Name:     col.Name,
				DataType: col.DataType,
				Nullable: col.IsNullable,
			})
		}
		model.Tables = append(model.Tables, st)
	}

	for _, rel := range result.Relationships {
		model.Joins = append(model.Joins, semanticJoin{
			From:        fmt.Sprintf("%s.%s", rel.FromTable.Table, rel.FromColumn),
			To:          fmt.Sprintf("%s.%s", rel.ToTable.Table, rel.ToColumn),
			Cardinality: rel.Cardinality,
			Confidence:  rel.Confidence,
		})
	}

	out, err := yaml.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("marshal semantic model: %w", err)
	}
	return string(out), nil
}

// BuildGraphRecords produces the table/column nodes and foreign-key edges
// a downstream graph store can upsert. Persistence is the caller's job;
// this run only produces the records.
func BuildGraphRecords(result *models.DiscoveryResult) *models.GraphRecords {
	graph := &models.GraphRecords{}

	for _, table := range result.Tables {
		tableID := table.Ref.FQN()
		graph.Nodes = append(graph.Nodes, models.GraphNode{
			ID:    tableID,
			Kind:  models.GraphNodeTable,
			Label: table.Ref.Table,
			Properties: map[string]any{
				"classification": table.Classification,
				"kind":           string(table.Kind),
			},
		})

		profile := result.ProfileFor(table.Ref)
		for _, col := range table.Columns {
			colID := tableID + "." + col.Name
			props := map[string]any{
				"data_type": col.DataType,
				"nullable":  col.IsNullable,
			}
			if profile != nil {
				if cp := profile.Column(col.Name); cp != nil {
					props["is_likely_pk"] = cp.IsLikelyPK
					props["null_pct"] = cp.NullPct
					props["uniqueness_pct"] = cp.UniquenessPct
				}
			}
			graph.Nodes = append(graph.Nodes, models.GraphNode{
				ID:         colID,
				Kind:       models.GraphNodeColumn,
				Label:      col.Name,
				Properties: props,
			})
			graph.Edges = append(graph.Edges, models.GraphEdge{
				From: tableID,
				To:   colID,
				Kind: models.GraphEdgeHasColumn,
			})
		}
	}

	for _, rel := range result.Relationships {
		graph.Edges = append(graph.Edges, models.GraphEdge{
			From: rel.FromTable.FQN() + "." + rel.FromColumn,
			To:   rel.ToTable.FQN() + "." + rel.ToColumn,
			Kind: models.GraphEdgeForeignKey,
			Properties: map[string]any{
				"confidence":  rel.Confidence,
				"cardinality": rel.Cardinality,
				"method":      rel.Method,
			},
		})
	}

	return graph
}
