package upstream

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const moduleSchema = `{
  "type": "object",
  "required": ["id", "name", "order"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "order": {"type": "integer"},
    "topics": {"type": "array", "items": {"type": "string"}},
    "exercises_count": {"type": "integer", "minimum": 0},
    "description": {"type": "string"}
  }
}`

const alertSchema = `{
  "type": "object",
  "required": ["user_id", "struggle_type", "timestamp"],
  "properties": {
    "user_id": {"type": "string"},
    "struggle_type": {"type": "string"},
    "module_id": {"type": ["string", "null"]},
    "details": {"type": ["object", "null"]},
    "timestamp": {"type": "number"},
    "resolved": {"type": "boolean"}
  }
}`

var schemaSources = map[string]string{
	"module": moduleSchema,

	"modules": `{"type": "array", "items": ` + moduleSchema + `}`,

	"progress": `{
	  "type": "object",
	  "required": ["modules"],
	  "properties": {
	    "user_id": {"type": "string"},
	    "streak": {"type": "integer", "minimum": 0},
	    "total_exercises": {"type": "integer", "minimum": 0},
	    "total_quizzes": {"type": "integer", "minimum": 0},
	    "modules": {
	      "type": "object",
	      "additionalProperties": {
	        "type": "object",
	        "required": ["mastery"],
	        "properties": {
	          "module_id": {"type": "string"},
	          "mastery": {"type": "number", "minimum": 0, "maximum": 100},
	          "exercises_completed": {"type": "integer", "minimum": 0},
	          "quizzes_taken": {"type": "integer", "minimum": 0}
	        }
	      }
	    }
	  }
	}`,

	"quiz": `{
	  "type": "object",
	  "required": ["id", "questions"],
	  "properties": {
	    "id": {"type": "string", "minLength": 1},
	    "module_id": {"type": "string"},
	    "topic": {"type": "string"},
	    "questions": {
	      "type": "array",
	      "minItems": 1,
	      "items": {
	        "type": "object",
	        "required": ["id", "question", "options"],
	        "properties": {
	          "id": {"type": "string", "minLength": 1},
	          "question": {"type": "string"},
	          "options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
	          "correct_answer": {"type": ["integer", "null"]},
	          "explanation": {"type": ["string", "null"]}
	        }
	      }
	    }
	  }
	}`,

	"result": `{
	  "type": "object",
	  "required": ["score", "total", "percentage", "results"],
	  "properties": {
	    "score": {"type": "integer", "minimum": 0},
	    "total": {"type": "integer", "minimum": 0},
	    "percentage": {"type": "number"},
	    "results": {
	      "type": "array",
	      "items": {
	        "type": "object",
	        "required": ["question_id", "correct"],
	        "properties": {
	          "question_id": {"type": "string"},
	          "correct": {"type": "boolean"},
	          "selected": {"type": ["integer", "null"]},
	          "correct_answer": {"type": ["integer", "null"]},
	          "explanation": {"type": ["string", "null"]}
	        }
	      }
	    }
	  }
	}`,

	"alerts": `{"type": "array", "items": ` + alertSchema + `}`,

	"session": `{
	  "type": ["object", "null"],
	  "properties": {
	    "user": {
	      "type": ["object", "null"],
	      "required": ["id"],
	      "properties": {
	        "id": {"type": "string"},
	        "name": {"type": ["string", "null"]},
	        "email": {"type": ["string", "null"]},
	        "role": {"type": ["string", "null"]}
	      }
	    }
	  }
	}`,
}

var (
	schemasOnce sync.Once
	schemas     map[string]*gojsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	schemasOnce.Do(func() {
		compiled := make(map[string]*gojsonschema.Schema, len(schemaSources))
		for name, src := range schemaSources {
			s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
			if err != nil {
				schemasErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			compiled[name] = s
		}
		schemas = compiled
	})
	return schemas, schemasErr
}

// validate checks body against the named schema.
func validate(op, name string, body []byte) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	s, ok := all[name]
	if !ok {
		return fmt.Errorf("no schema named %q", name)
	}

	res, err := s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &SchemaError{Op: op, Detail: "response is not JSON", Err: err}
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return &SchemaError{Op: op, Detail: strings.Join(msgs, "; ")}
	}
	return nil
}
