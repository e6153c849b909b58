// Package pgx loads the knowledge graph from PostgreSQL. Embeddings are
// stored as pgvector columns; node text lives in per-source provenance
// tables keyed by source id.
package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/geoffsee/proseva-sub005/internal/util"
	"github.com/geoffsee/proseva-sub005/pkg/common"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// Provenance tables holding resolvable node text, keyed by the node's
// source column. Sources not listed here fall back to the document_chunks
// table.
var sourceTables = map[string]sourceTable{
	"statutes":     {table: "statutes", keyColumn: "section_number", textColumn: "full_text"},
	"constitution": {table: "constitution_sections", keyColumn: "section_key", textColumn: "full_text"},
	"named_laws":   {table: "named_laws", keyColumn: "slug", textColumn: "summary"},
	"authorities":  {table: "authorities", keyColumn: "slug", textColumn: "description"},
	"courts":       {table: "courts", keyColumn: "slug", textColumn: "description"},
}

type sourceTable struct {
	table      string
	keyColumn  string
	textColumn string
}

// GraphDB loads graph structure and resolves node text from PostgreSQL.
type GraphDB struct {
	conn pgxIConn
}

// NewGraphDB creates a loader and text resolver backed by an existing
// connection or pool.
func NewGraphDB(conn pgxIConn) *GraphDB {
	return &GraphDB{conn: conn}
}

// LoadNodes fetches every graph node in insertion order.
func (db *GraphDB) LoadNodes(ctx context.Context) ([]common.Node, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT id, source, source_id, node_type FROM graph_nodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	out := make([]common.Node, 0)
	for rows.Next() {
		var n common.Node
		if err := rows.Scan(&n.ID, &n.Source, &n.SourceID, &n.NodeType); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// LoadEdges fetches every directed edge.
func (db *GraphDB) LoadEdges(ctx context.Context) ([]common.Edge, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT from_id, to_id, rel_type, COALESCE(weight, 0) FROM graph_edges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	out := make([]common.Edge, 0)
	for rows.Next() {
		var e common.Edge
		if err := rows.Scan(&e.FromID, &e.ToID, &e.RelType, &e.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LoadEmbeddings fetches every node embedding joined with its node
// metadata, in node id order so corpus order is deterministic.
func (db *GraphDB) LoadEmbeddings(ctx context.Context) ([]common.EmbeddingRecord, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT n.id, n.source, n.source_id, n.node_type, e.embedding
		 FROM graph_nodes n
		 JOIN node_embeddings e ON e.node_id = n.id
		 ORDER BY n.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	out := make([]common.EmbeddingRecord, 0)
	for rows.Next() {
		var (
			rec common.EmbeddingRecord
			vec pgvector.Vector
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.SourceID, &rec.NodeType, &vec); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		rec.Vector = vec.Slice()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ResolveText looks up a node's content in its provenance table, falling
// back to the document_chunks table for chunked sources. A node with no
// row resolves to an empty string with a nil error.
func (db *GraphDB) ResolveText(ctx context.Context, node common.Node) (string, error) {
	st, ok := sourceTables[node.Source]
	if !ok {
		return db.resolveChunkText(ctx, node)
	}

	var text string
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		st.textColumn, st.table, st.keyColumn)
	err := db.conn.QueryRow(ctx, query, node.SourceID).Scan(&text)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s text: %w", node.Source, err)
	}
	return util.SanitizePostgresText(text), nil
}

func (db *GraphDB) resolveChunkText(ctx context.Context, node common.Node) (string, error) {
	var text string
	err := db.conn.QueryRow(ctx,
		`SELECT content FROM document_chunks WHERE chunk_key = $1`,
		node.SourceID).Scan(&text)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve chunk text: %w", err)
	}
	return util.SanitizePostgresText(text), nil
}
