package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrWrongPassword      ErrCode = "WRONG_PASSWORD"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden            ErrCode = "FORBIDDEN"
	ErrUnsupportedOperation ErrCode = "UNSUPPORTED_OPERATION"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "ALREADY_EXISTS"

	// ─── Quiz-specific ─────────────────────────────────────────────────
	ErrQuizNotOpen      ErrCode = "QUIZ_NOT_OPEN"
	ErrAttemptCompleted ErrCode = "ATTEMPT_COMPLETED"
	ErrAttemptNotFound  ErrCode = "ATTEMPT_NOT_FOUND"

	// ─── Tasks ─────────────────────────────────────────────────────────
	ErrPastDeadline ErrCode = "PAST_DEADLINE"

	// ─── Uploads ───────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "INVALID_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Attendance ────────────────────────────────────────────────────
	ErrAlreadyRecorded ErrCode = "ATTENDANCE_ALREADY_RECORDED"
	ErrInvalidCheckin  ErrCode = "INVALID_CHECKIN_TOKEN"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email atau kata sandi salah."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."
	case ErrWrongPassword:
		return "Kata sandi lama salah."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Anda tidak memiliki izin untuk mengakses sumber daya ini."
	case ErrUnsupportedOperation:
		return "Operasi ini tidak didukung pada sumber daya tersebut."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."

	// ─── Quiz-specific ─────────────────────────────────────────────────
	case ErrQuizNotOpen:
		return "Kuis belum dibuka atau sudah melewati tenggat."
	case ErrAttemptCompleted:
		return "Anda sudah menyelesaikan kuis ini."
	case ErrAttemptNotFound:
		return "Tidak ada pengerjaan kuis yang sedang berlangsung."

	// ─── Tasks ─────────────────────────────────────────────────────────
	case ErrPastDeadline:
		return "Tenggat pengumpulan sudah lewat."

	// ─── Uploads ───────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Unggah file diperlukan."
	case ErrUnsupportedFile:
		return "Jenis file tidak didukung."
	case ErrFileTooLarge:
		return "Ukuran file melebihi batas 3 MB."

	// ─── Attendance ────────────────────────────────────────────────────
	case ErrAlreadyRecorded:
		return "Kehadiran untuk tanggal tersebut sudah tercatat."
	case ErrInvalidCheckin:
		return "Token check-in tidak valid atau sudah kedaluwarsa."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
