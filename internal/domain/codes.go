package domain

// Code is a stable response code shared by every operation.
type Code int

const (
	CodeSuccess Code = 0
	CodeFail    Code = 1

	CodeUserNotFound      Code = 1000
	CodeUserExist         Code = 1001
	CodeUserNotActive     Code = 1002
	CodeUnauthorized      Code = 1003
	CodePasswordIncorrect Code = 1100
	CodeOTPIncorrect      Code = 1200
	CodeInvalidData       Code = 1300

	CodeCategoryExist       Code = 2000
	CodeCategoryNotExist    Code = 2001
	CodeCategoryListIsEmpty Code = 2002
	CodeCourseNotExist      Code = 2100
	CodeLessonNotExist      Code = 2200
	CodeQuizExist           Code = 2300
	CodeQuizNotExist        Code = 2301
	CodeQuizListIsEmpty     Code = 2302
	CodeQuestionNotExist    Code = 2400
	CodeQuestionListIsEmpty Code = 2401
	CodeAnswerNotExist      Code = 2500
	CodeAnswerListIsEmpty   Code = 2501
)

var codeMessages = map[Code]string{
	CodeSuccess:             "success",
	CodeFail:                "fail",
	CodeUserNotFound:        "User not found",
	CodeUserExist:           "User already exist",
	CodeUserNotActive:       "User is not active",
	CodeUnauthorized:        "Unauthorized",
	CodePasswordIncorrect:   "Password incorrect",
	CodeOTPIncorrect:        "OTP incorrect",
	CodeInvalidData:         "Invalid data",
	CodeCategoryExist:       "Category already exist",
	CodeCategoryNotExist:    "Category not exist",
	CodeCategoryListIsEmpty: "Category list is empty",
	CodeCourseNotExist:      "Course not exist",
	CodeLessonNotExist:      "Lesson not exist",
	CodeQuizExist:           "Quiz already exist",
	CodeQuizNotExist:        "Quiz not exist",
	CodeQuizListIsEmpty:     "Quiz list is empty",
	CodeQuestionNotExist:    "Question not exist",
	CodeQuestionListIsEmpty: "Question list is empty",
	CodeAnswerNotExist:      "Answer not exist",
	CodeAnswerListIsEmpty:   "Answer list is empty",
}

// Message returns the default human message for the code.
func (c Code) Message() string {
	if m, ok := codeMessages[c]; ok {
		return m
	}
	return codeMessages[CodeFail]
}

// Envelope is the uniform {code, message, data} result.
type Envelope[T any] struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// Result converts an operation outcome into an envelope. Data is dropped on error.
func Result[T any](data T, err error, successMsg string) Envelope[T] {
	if err != nil {
		return Envelope[T]{Code: CodeOf(err), Message: MessageOf(err)}
	}
	if successMsg == "" {
		successMsg = CodeSuccess.Message()
	}
	return Envelope[T]{Code: CodeSuccess, Message: successMsg, Data: &data}
}
