package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"marvelous/internal/comic"
	"marvelous/internal/config"
	"marvelous/internal/enrichment"
	"marvelous/internal/logger"
	"marvelous/internal/person"
	"marvelous/internal/platform/marvel"
	"marvelous/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	var (
		count  = flag.Int("count", 10, "Number of people to register")
		comics = flag.String("comics", "", "Comma separated gateway comic ids to attach to every seeded person")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		logger.Init("development", "")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)

	comicIDs, err := parseIDs(*comics)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -comics")
	}

	ctx := context.Background()
	pool, err := store.Open(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer pool.Close()

	personSvc := person.NewService(person.NewPostgresRepo(pool, cfg.DB.Timeout))
	enrichmentSvc := enrichment.NewService(
		marvel.NewClient(marvel.Config{
			BaseURL:    cfg.Marvel.BaseURL,
			PublicKey:  cfg.Marvel.PublicKey,
			PrivateKey: cfg.Marvel.PrivateKey,
			Timeout:    cfg.Marvel.Timeout,
		}),
		comic.NewPostgresRepo(pool, cfg.DB.Timeout),
		personSvc,
		enrichment.NewPostgresRepo(pool, cfg.DB.Timeout),
	)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	seeded := 0
	for i := 0; i < *count; i++ {
		p, err := randomPerson(rng, i)
		if err != nil {
			log.Fatal().Err(err).Msg("generate person")
		}

		id, err := personSvc.Register(ctx, p)
		if errors.Is(err, person.ErrAlreadyExists) {
			log.Warn().Str("cpf", p.CPF).Msg("person exists, skipping")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Msg("register person")
		}
		seeded++

		if len(comicIDs) == 0 {
			continue
		}
		res, err := enrichmentSvc.Update(ctx, enrichment.UpdateRequest{PersonID: id, ComicIDs: comicIDs})
		if err != nil {
			log.Fatal().Err(err).Int64("person_id", id).Msg("attach comics")
		}
		log.Info().Int64("person_id", id).Int("comics", len(res.Comics)).Str("run_id", res.RunID).Msg("comics attached")
	}

	log.Info().Int("seeded", seeded).Int("requested", *count).Msg("seed finished")
}

var firstNames = []string{"Peter", "Mary", "Miles", "Gwen", "Tony", "Natasha", "Bruce", "Carol", "Wanda", "Sam"}
var lastNames = []string{"Parker", "Watson", "Morales", "Stacy", "Stark", "Romanoff", "Banner", "Danvers", "Maximoff", "Wilson"}

func randomPerson(rng *rand.Rand, n int) (person.Person, error) {
	var cpf string
	for !person.ValidCPF(cpf) {
		var err error
		cpf, err = person.CompleteCPF(fmt.Sprintf("%09d", rng.Intn(1_000_000_000)))
		if err != nil {
			return person.Person{}, err
		}
	}
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	birthday := time.Date(1950+rng.Intn(55), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)

	return person.Person{
		CPF:      cpf,
		Name:     first + " " + last,
		Email:    fmt.Sprintf("%s.%s.%d.%s@example.com", strings.ToLower(first), strings.ToLower(last), n, cpf[:4]),
		Birthday: person.Date{Time: birthday},
	}, nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("bad comic id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
