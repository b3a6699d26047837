package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/risor-io/risor/object"
)

// makeQueryFn creates the "query" host function.
//
// query(sql) or query(sql, vars) → list of maps (column → value)
func makeQueryFn(fn QueryFunc) *object.Builtin {
	return object.NewBuiltin("query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return object.Errorf("query: expected 1 or 2 arguments (sql, vars), got %d", len(args))
		}
		sqlStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("query: sql must be a string, got %s", args[0].Type())
		}

		vars := map[string]any{}
		if len(args) == 2 {
			m, ok := args[1].(*object.Map)
			if !ok {
				return object.Errorf("query: vars must be a map, got %s", args[1].Type())
			}
			for k, v := range m.Value() {
				vars[k] = fromObject(v)
			}
		}

		rows, err := fn(ctx, sqlStr.Value(), vars)
		if err != nil {
			return object.Errorf("query: %v", err)
		}
		results := make([]object.Object, 0, len(rows))
		for _, row := range rows {
			m := make(map[string]object.Object, len(row))
			for col, v := range row {
				m[col] = toObject(v)
			}
			results = append(results, object.NewMap(m))
		}
		return object.NewList(results)
	})
}

// toObject converts a query result value to a Risor object.
func toObject(v any) object.Object {
	if v == nil {
		return object.Nil
	}
	switch val := v.(type) {
	case int64:
		return object.NewInt(val)
	case int:
		return object.NewInt(int64(val))
	case float64:
		return object.NewFloat(val)
	case string:
		return object.NewString(val)
	case bool:
		return object.NewBool(val)
	case []byte:
		return object.NewString(string(val))
	default:
		return object.NewString(fmt.Sprintf("%v", val))
	}
}

// fromObject converts a Risor scalar into a query variable.
func fromObject(obj object.Object) any {
	switch v := obj.(type) {
	case *object.Int:
		return v.Value()
	case *object.Float:
		return v.Value()
	case *object.String:
		return v.Value()
	case *object.Bool:
		return v.Value()
	case *object.NilType:
		return nil
	default:
		return fmt.Sprintf("%v", obj.Inspect())
	}
}

// objectText renders a script result the way a message should read:
// strings bare, nil empty, anything else in Risor notation.
func objectText(obj object.Object) string {
	switch v := obj.(type) {
	case nil, *object.NilType:
		return ""
	case *object.String:
		return v.Value()
	default:
		return obj.Inspect()
	}
}

// logObject provides log.info/warn/error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "script")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "script")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "script")
}
