package dummydb

import (
	"sync"

	"github.com/belajarku/backend/core/chat"
	"github.com/belajarku/backend/core/gamification"
	"github.com/belajarku/backend/core/quiz"
	"github.com/belajarku/backend/core/topic"
	"github.com/belajarku/backend/core/user"
)

type (
	DB struct {
		user  *userTable
		topic *topicTable
		quiz  *quizTable
		badge *badgeTable
		chat  *chatTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	topicTable struct {
		sync.RWMutex
		topics    map[string]*topic.Topic
		materials map[string]*topic.Material
	}

	quizTable struct {
		sync.RWMutex
		questions map[string]*quiz.Question    // questionID
		scores    map[string]*quiz.ScoreLedger // userID + "/" + materialID
		progress  map[string]*quiz.Progress    // userID + "/" + materialID
	}

	badgeTable struct {
		sync.RWMutex
		table map[string]*gamification.Badge
	}

	chatTable struct {
		sync.RWMutex
		rooms    map[string]*chat.Room
		messages map[string][]*chat.Message // roomID
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:  &userTable{table: make(map[string]*user.User)},
		topic: &topicTable{topics: make(map[string]*topic.Topic), materials: make(map[string]*topic.Material)},
		quiz: &quizTable{
			questions: make(map[string]*quiz.Question),
			scores:    make(map[string]*quiz.ScoreLedger),
			progress:  make(map[string]*quiz.Progress),
		},
		badge: &badgeTable{table: make(map[string]*gamification.Badge)},
		chat:  &chatTable{rooms: make(map[string]*chat.Room), messages: make(map[string][]*chat.Message)},
	}
	return db, nil
}
