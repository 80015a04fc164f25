package options

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/cache-control/pkg/settings"
)

// RedisStore keeps options in Redis.
//
// Layout:
//
//	prefix:global                  hash of global fields
//	prefix:post_type               set of configured post type names
//	prefix:post_type:<name>        hash of post type fields
//	prefix:taxonomy / :<name>      same for taxonomies
//	prefix:template / :<name>      same for templates
//	prefix:individual_posts        list of JSON objects {post_id, cache_age}
//
// Hash values are strings, so every stored age is a numeric string.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisStore creates a Redis backed store. An empty prefix uses DefaultKeyPrefix.
func NewRedisStore(redisClient *redis.Client, prefix string, logger zerolog.Logger) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
		logger: logger,
	}
}

// Name implements Store.
func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) key(g Group, name string) string {
	return Key{Prefix: s.prefix, Group: g, Name: name}.String()
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (Options, error) {
	var o Options

	global, err := s.redis.HGetAll(ctx, s.key(GroupGlobal, "")).Result()
	if err != nil {
		return Options{}, storeError(s.Name(), "load", fmt.Errorf("redis hgetall global: %w", err))
	}
	o.Global = toFields(global)

	if o.PostTypes, err = s.loadGroup(ctx, GroupPostType); err != nil {
		return Options{}, err
	}
	if o.Taxonomies, err = s.loadGroup(ctx, GroupTaxonomy); err != nil {
		return Options{}, err
	}
	if o.Templates, err = s.loadGroup(ctx, GroupTemplate); err != nil {
		return Options{}, err
	}

	rows, err := s.redis.LRange(ctx, s.key(GroupIndividualPosts, ""), 0, -1).Result()
	if err != nil {
		return Options{}, storeError(s.Name(), "load", fmt.Errorf("redis lrange individual posts: %w", err))
	}
	for i, raw := range rows {
		var row map[string]any
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			// A corrupt row must not hide the rest of the settings.
			StoreErrors.WithLabelValues(s.Name(), "decode").Inc()
			s.logger.Warn().Err(err).Int("row", i).Msg("Skipping undecodable individual post override")
			continue
		}
		o.IndividualPosts = append(o.IndividualPosts, row)
	}

	if o.IsEmpty() {
		return Options{}, ErrNoOptions
	}

	s.logger.Debug().
		Int("post_types", len(o.PostTypes)).
		Int("taxonomies", len(o.Taxonomies)).
		Int("templates", len(o.Templates)).
		Int("individual_posts", len(o.IndividualPosts)).
		Msg("Loaded options from Redis")

	return o, nil
}

func (s *RedisStore) loadGroup(ctx context.Context, g Group) (map[string]map[string]any, error) {
	names, err := s.redis.SMembers(ctx, s.key(g, "")).Result()
	if err != nil {
		return nil, storeError(s.Name(), "load", fmt.Errorf("redis smembers %s: %w", g, err))
	}
	if len(names) == 0 {
		return nil, nil
	}

	cmds := make(map[string]*redis.MapStringStringCmd, len(names))
	_, err = s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, name := range names {
			cmds[name] = pipe.HGetAll(ctx, s.key(g, name))
		}
		return nil
	})
	if err != nil {
		return nil, storeError(s.Name(), "load", fmt.Errorf("redis hgetall %s: %w", g, err))
	}

	out := make(map[string]map[string]any, len(names))
	for name, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil {
			return nil, storeError(s.Name(), "load", fmt.Errorf("redis hgetall %s: %w", s.key(g, name), err))
		}
		if len(fields) == 0 {
			continue
		}
		out[name] = toFields(fields)
	}
	return out, nil
}

// Save replaces every stored setting with o in one transaction.
func (s *RedisStore) Save(ctx context.Context, o Options) error {
	stale := []string{s.key(GroupGlobal, ""), s.key(GroupIndividualPosts, "")}
	for _, g := range []Group{GroupPostType, GroupTaxonomy, GroupTemplate} {
		names, err := s.redis.SMembers(ctx, s.key(g, "")).Result()
		if err != nil {
			return storeError(s.Name(), "save", fmt.Errorf("redis smembers %s: %w", g, err))
		}
		stale = append(stale, s.key(g, ""))
		for _, name := range names {
			stale = append(stale, s.key(g, name))
		}
	}

	for _, problem := range o.Lint() {
		s.logger.Warn().Str("problem", problem).Msg("Option value will be saved as default")
	}

	rows := make([]any, 0, len(o.IndividualPosts))
	for i, row := range o.IndividualPosts {
		b, err := json.Marshal(row)
		if err != nil {
			return storeError(s.Name(), "save", fmt.Errorf("marshal individual post %d: %w", i, err))
		}
		rows = append(rows, string(b))
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, stale...)

		if fields := toHash(o.Global); len(fields) > 0 {
			pipe.HSet(ctx, s.key(GroupGlobal, ""), fields)
		}

		groups := []struct {
			group   Group
			entries map[string]map[string]any
		}{
			{GroupPostType, o.PostTypes},
			{GroupTaxonomy, o.Taxonomies},
			{GroupTemplate, o.Templates},
		}
		for _, gr := range groups {
			for _, name := range sortedNames(gr.entries) {
				fields := toHash(gr.entries[name])
				if len(fields) == 0 {
					continue
				}
				pipe.SAdd(ctx, s.key(gr.group, ""), name)
				pipe.HSet(ctx, s.key(gr.group, name), fields)
			}
		}

		if len(rows) > 0 {
			pipe.RPush(ctx, s.key(GroupIndividualPosts, ""), rows...)
		}
		return nil
	})
	if err != nil {
		return storeError(s.Name(), "save", fmt.Errorf("redis transaction: %w", err))
	}

	s.logger.Info().Str("prefix", s.prefix).Msg("Saved options to Redis")
	return nil
}

func toFields(hash map[string]string) map[string]any {
	if len(hash) == 0 {
		return nil
	}
	out := make(map[string]any, len(hash))
	for k, v := range hash {
		out[k] = v
	}
	return out
}

// toHash renders fields as Redis hash values. Ages and flags are written in
// the form they parse to, so a reload through Redis reads the same settings
// as the tree that was saved. nil, lists and maps are dropped.
func toHash(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if v == nil {
			continue
		}
		switch k {
		case FieldCacheAge:
			out[k] = settings.ParseAge(v).String()
		case FieldFrontPageCache, FieldHomePageCache, FieldArchivesCache:
			out[k] = settings.ParseGlobalAge(v).String()
		case FieldPriority:
			out[k] = strconv.Itoa(settings.ParsePriority(v))
		case FieldDeveloperMode, FieldOverrideArchive, FieldOverriddenByTaxonomy,
			FieldOverriddenByTemplate, FieldCacheIgnore, FieldOverrideTaxonomy:
			if s, ok := flagValue(v); ok {
				out[k] = s
			}
		default:
			if s, ok := hashValue(v); ok {
				out[k] = s
			}
		}
	}
	return out
}

// flagValue keeps string flags verbatim and writes booleans and numbers as "1" or "0".
func flagValue(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		if _, err := x.Float64(); err != nil {
			return "", false
		}
	case bool, int, int32, int64, uint64, float64:
	default:
		return "", false
	}
	if settings.ParseBool(v, false) {
		return "1", true
	}
	return "0", true
}

func hashValue(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		if x {
			return "1", true
		}
		return "0", true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	default:
		return "", false
	}
}
