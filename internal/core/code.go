package core

import "github.com/vovakirdan/wireroom-server/internal/utils"

const defaultCodeLength = 6

func defaultCode() string {
	return utils.NewRoomCode(defaultCodeLength)
}
