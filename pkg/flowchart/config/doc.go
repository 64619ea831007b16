/*
Package config loads flowchart settings from YAML or JSON.

# Overview

Config wraps a map[string]any decoded from a file and offers typed accessors
that fall back to a default when a key is missing or has the wrong type.
Keys are dotted paths into nested sections:

	cfg, err := config.FromYAML([]byte(`
	llm:
	  model: gpt-4o-mini
	  temperature: 0.2
	retry:
	  delay: 500ms
	`))

	cfg.String("llm.model", "gpt-3.5-turbo")   // "gpt-4o-mini"
	cfg.Duration("retry.delay", time.Second)   // 500ms
	cfg.Int("retry.max_attempts", 5)           // 5

# Settings

Settings is the typed view the CLI and generator use. Config.Settings fills
it from the file, with DefaultSettings for anything absent:

	llm.provider        openai | claude | mock   (openai)
	llm.model           model name               (gpt-3.5-turbo)
	llm.temperature     sampling temperature     (0.7)
	llm.max_tokens      completion limit         (1000)
	llm.base_url        API base URL             ("")
	llm.timeout         per-call timeout         (2m)
	retry.max_attempts  attempts per run         (5)
	retry.delay         fixed delay              (1s)
	retry.upstream      retry LLM failures       (false)
	output.dir          image directory          (static)
	output.format       png | svg | jpg | mmd    (png)
	parse.strict_kinds  drop unknown node kinds  (false)
	history.path        SQLite file, "" = memory ("")
	log.level           debug|info|warn|error    (info)
	log.format          text | json              (text)

The OpenAI API key is never read from a file; it comes from OPENAI_API_KEY.

# File Loading

FromFile picks the decoder by extension (.yaml, .yml, .json). Load also
looks for flowchart.yaml, flowchart.yml or flowchart.json in the working
directory when no path is given.

# Thread Safety

Config is safe for concurrent reads. Set is not synchronized.
*/
package config
