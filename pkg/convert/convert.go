// Package convert turns CMD (Conway-Markdown) source into HTML.
//
// A CMD file is plain text, optionally preceded by replacement rules
// and a delimiter line of three-or-more percent signs. The built-in
// rules provide the Markdown-flavoured defaults; user rules extend or
// override them by declaring replacements with the same identifiers.
package convert

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Version is substituted for the CMD_VERSION keyword in rule files.
const Version = "1.0.0"

// Result carries the rendered HTML together with the non-fatal
// diagnostics recorded while parsing rules and applying them.
type Result struct {
	HTML        string
	Diagnostics []Diagnostic
}

type options struct {
	logger        *log.Logger
	verbose       bool
	maxIterations int
	includer      Includer
	properties    map[string]string
}

// Option configures a single call to Convert.
type Option func(*options)

// WithLogger routes rule-parsing warnings and verbose traces to logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithVerbose enables per-rule tracing on the configured logger.
func WithVerbose(verbose bool) Option {
	return func(o *options) { o.verbose = verbose }
}

// WithMaxIterations overrides the bound on repeated-application loops.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// WithIncluder supplies the loader for `< file` inclusion lines. When
// absent, inclusions fail with a diagnostic.
func WithIncluder(includer Includer) Option {
	return func(o *options) { o.includer = includer }
}

// WithProperties overrides boilerplate properties such as title, lang,
// and styles, as if the document declared them itself.
func WithProperties(properties map[string]string) Option {
	return func(o *options) { o.properties = properties }
}

// delimiterPattern matches a line consisting solely of three-or-more
// percent signs. Trailing characters on the line defeat the match, so
// `%%% comment` is ordinary content.
var delimiterPattern = regexp.MustCompile(`(?m)^%{3,}\n`)

// ExtractRulesAndContent splits CMD source at the first rules
// delimiter. Source without a delimiter is all content.
func ExtractRulesAndContent(source string) (rules, content string) {
	loc := delimiterPattern.FindStringIndex(source)
	if loc == nil {
		return "", source
	}
	return source[:loc[0]], source[loc[1]:]
}

// CMDName normalises a CMD file path into the name made available to
// rules through the CMD_NAME keyword: the `.cmd` extension is dropped
// and backslashes become forward slashes.
func CMDName(filePath string) string {
	name := strings.TrimSuffix(filePath, ".cmd")
	return strings.ReplaceAll(name, `\`, "/")
}

// extractBasename strips everything up to and including the last slash.
func extractBasename(name string) string {
	if index := strings.LastIndex(name, "/"); index >= 0 {
		return name[index+1:]
	}
	return name
}

// makeCleanURL drops a trailing `index` component, keeping the slash
// that preceded it.
func makeCleanURL(name string) string {
	if name == "index" {
		return ""
	}
	if strings.HasSuffix(name, "/index") {
		return strings.TrimSuffix(name, "index")
	}
	return name
}

// Convert renders CMD source to HTML. filePath names the source file;
// it seeds the CMD_NAME family of keywords and labels diagnostics for
// the user rule block. Diagnostics are returned even on error.
func Convert(source, filePath string, opts ...Option) (Result, error) {
	o := options{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&o)
	}

	rules, content := ExtractRulesAndContent(source)

	env := newEnvironment(o.logger, o.verbose, o.maxIterations)
	authority := newAuthority(env, CMDName(filePath), o.includer)

	if err := authority.Legislate(standardRules, "STANDARD_RULES"); err != nil {
		return Result{Diagnostics: env.diagnostics}, fmt.Errorf("standard rules: %w", err)
	}
	if err := registerProperties(env, authority.Registry(), o.properties); err != nil {
		return Result{Diagnostics: env.diagnostics}, err
	}
	if err := authority.Legislate(rules, filePath); err != nil {
		return Result{Diagnostics: env.diagnostics}, err
	}

	html, err := executeTraced(authority.Registry(), env, content)
	if err != nil {
		return Result{Diagnostics: env.diagnostics}, err
	}

	resolved, err := env.store.Resolve(html, env.maxIterations)
	if err != nil {
		return Result{Diagnostics: env.diagnostics}, &ResolutionError{Err: err}
	}

	return Result{HTML: resolved, Diagnostics: env.diagnostics}, nil
}

// registerProperties queues a dictionary rule carrying caller-supplied
// boilerplate property overrides, ahead of the built-in defaults so the
// overrides win. Keys are sorted so conversion stays deterministic.
func registerProperties(env *environment, reg *Registry, properties map[string]string) error {
	if len(properties) == 0 {
		return nil
	}
	rule := &OrdinaryDictionaryRule{ruleBase: ruleBase{
		env:         env,
		id:          ".properties",
		position:    PositionBefore,
		referenceID: "boilerplate-properties",
	}}
	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rule.substitutions = rule.substitutions.add("%"+key, properties[key])
	}
	if err := rule.commit(); err != nil {
		return fmt.Errorf("property overrides: %w", err)
	}
	if err := reg.register(rule); err != nil {
		return fmt.Errorf("property overrides: %w", err)
	}
	return nil
}

// executeTraced runs the registry queue with optional per-rule tracing.
// Queue-level application has no flag context.
func executeTraced(reg *Registry, env *environment, text string) (string, error) {
	for _, rule := range reg.queue {
		applied, err := rule.Apply(text, nil)
		if err != nil {
			return "", err
		}
		env.trace(rule.ID(), text, applied)
		text = applied
	}
	return text, nil
}
