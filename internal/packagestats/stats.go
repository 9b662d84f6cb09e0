package packagestats

// TopLevelStats 是题包的整体游戏计数
type TopLevelStats struct {
	StartedGameCount   int `json:"startedGameCount"`
	CompletedGameCount int `json:"completedGameCount"`
}

// QuestionStats 是单个问题的累计计数
type QuestionStats struct {
	ShownCount      int `json:"shownCount"`
	PlayerSeenCount int `json:"playerSeenCount"`
	CorrectCount    int `json:"correctCount"`
	WrongCount      int `json:"wrongCount"`
}

// Stats 是一局游戏的统计快照，也是题包的累计统计
type Stats struct {
	TopLevelStats TopLevelStats            `json:"topLevelStats"`
	QuestionStats map[string]QuestionStats `json:"questionStats"`
}

func (q QuestionStats) add(o QuestionStats) QuestionStats {
	return QuestionStats{
		ShownCount:      q.ShownCount + o.ShownCount,
		PlayerSeenCount: q.PlayerSeenCount + o.PlayerSeenCount,
		CorrectCount:    q.CorrectCount + o.CorrectCount,
		WrongCount:      q.WrongCount + o.WrongCount,
	}
}

// Merge 逐字段相加两份统计，问题集合取并集。
// 不修改参数，返回新的统计。
func Merge(current, incoming Stats) Stats {
	merged := Stats{
		TopLevelStats: TopLevelStats{
			StartedGameCount:   current.TopLevelStats.StartedGameCount + incoming.TopLevelStats.StartedGameCount,
			CompletedGameCount: current.TopLevelStats.CompletedGameCount + incoming.TopLevelStats.CompletedGameCount,
		},
		QuestionStats: make(map[string]QuestionStats, len(current.QuestionStats)+len(incoming.QuestionStats)),
	}
	for key, qs := range current.QuestionStats {
		merged.QuestionStats[key] = qs
	}
	for key, qs := range incoming.QuestionStats {
		merged.QuestionStats[key] = merged.QuestionStats[key].add(qs)
	}
	return merged
}
