package main

import (
	"math/rand"
	"time"

	"review-rag-be/internal/entity"

	"github.com/google/uuid"
)

var productSkus = []string{
	"LAPTOP-001",
	"PHONE-002",
	"HEADPHONES-003",
	"CAMERA-004",
	"TABLET-005",
}

var userIds = []string{
	"user_001", "user_002", "user_003", "user_004", "user_005",
	"user_006", "user_007", "user_008", "user_009", "user_010",
}

type sentiment string

const (
	positive sentiment = "positive"
	neutral  sentiment = "neutral"
	negative sentiment = "negative"
)

var templates = map[sentiment][]string{
	positive: {
		"Loved it. Exceeded my expectations in every way, the build quality is excellent and it works flawlessly.",
		"Exactly what I was looking for. Great value for the money and solid construction. Highly recommended!",
		"Fantastic product. Fast delivery, careful packaging and it works perfectly. I will buy again.",
		"Outstanding quality and performance. It made my daily routine much easier. Worth every cent!",
		"Great purchase. Arrived quickly and works exactly as described. Very happy with it.",
		"Amazing attention to detail and it performs beautifully. Best thing I bought this year.",
		"Top-notch materials and it runs smoothly. Support was helpful when I had a setup question.",
		"Battery lasts all day and the screen is bright and sharp. Couldn't be happier.",
	},
	neutral: {
		"It's okay. Works as expected but nothing remarkable. Decent quality for the price.",
		"A decent product. Does what it should and not much more. Average quality overall.",
		"Works fine. Not great, not bad. It gets the job done.",
		"Average product. Functional but there is room for improvement in a few areas.",
		"Fair value. Build is fine, performance is fine, nothing to get excited about.",
		"A basic product that does its job. Setup was a bit fiddly but it works.",
	},
	negative: {
		"Very disappointed. Poor quality and it does not work as advertised. Not recommended.",
		"Terrible. It broke after only a few days of use. A waste of money and time.",
		"Awful product. Cheap materials, unreliable, and customer support was useless. Avoid!",
		"Arrived defective and never worked as described. I regret buying it.",
		"Worst purchase I've made. Overheats constantly and the battery drains in hours.",
		"Feels cheap and stopped charging within a week. Terrible value.",
	},
}

// pickSentiment splits 40% positive, 30% neutral, 30% negative.
func pickSentiment(r *rand.Rand) sentiment {
	switch x := r.Float64(); {
	case x < 0.4:
		return positive
	case x < 0.7:
		return neutral
	default:
		return negative
	}
}

func pick(r *rand.Rand, items []string) string {
	return items[r.Intn(len(items))]
}

type generated struct {
	Reviews     []*entity.ProductReview
	BySentiment map[sentiment]int
}

// generateReviews builds n synthetic reviews dated within the last year.
func generateReviews(r *rand.Rand, n int, now time.Time) generated {
	out := generated{
		Reviews:     make([]*entity.ProductReview, 0, n),
		BySentiment: make(map[sentiment]int, 3),
	}

	for i := 0; i < n; i++ {
		s := pickSentiment(r)
		out.BySentiment[s]++

		out.Reviews = append(out.Reviews, &entity.ProductReview{
			Id:         uuid.New(),
			ProductSku: pick(r, productSkus),
			ReviewText: pick(r, templates[s]),
			UserId:     pick(r, userIds),
			CreatedAt:  now.AddDate(0, 0, -r.Intn(365)),
		})
	}
	return out
}
