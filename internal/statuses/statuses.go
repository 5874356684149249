package statuses

const (
	StatusPlay         = "play"
	StatusStoneRemoval = "stone_removal"
	StatusFinished     = "finished"
)
